package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ai-roundtable/observatory/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthReportsHealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(nil, map[string]*queue.Queue{}, map[string]*queue.Worker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "healthy")
}

func TestServer_StatusQueuesReturnsEmptyListWhenNoQueues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(nil, map[string]*queue.Queue{}, map[string]*queue.Worker{})

	req := httptest.NewRequest(http.MethodGet, "/status/queues", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"queues": []}`, w.Body.String())
}
