package backfill

import (
	"context"
	"strings"
	"testing"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/require"
)

type fakeStatusStore struct {
	statuses map[string]models.EventStatus
}

func (f *fakeStatusStore) SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error {
	if f.statuses == nil {
		f.statuses = map[string]models.EventStatus{}
	}
	f.statuses[eventID] = to
	return nil
}

func (f *fakeStatusStore) TrustProfileForEvent(ctx context.Context, eventID string) (models.TrustProfile, error) {
	return models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierStandard}}, nil
}

func TestParseCSV_ParsesHeaderedRows(t *testing.T) {
	csvData := "sourceType,url,title,publishedAt\n" +
		"devto,https://dev.to/a,Some Title,2026-07-30T00:00:00Z\n"

	rows, err := parseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "devto", rows[0].SourceType)
	require.Equal(t, "Some Title", rows[0].Title)
	require.NotNil(t, rows[0].PublishedAt)
	require.Equal(t, 2026, rows[0].PublishedAt.Year())
}

func TestParseJSONL_ParsesOneRowPerLine(t *testing.T) {
	data := `{"sourceType":"hn","url":"https://x.com/a","title":"A"}
{"sourceType":"hn","url":"https://x.com/b","title":"B"}`

	rows, err := parseJSONL(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "B", rows[1].Title)
}

func TestParseJSONL_SkipsBlankLines(t *testing.T) {
	data := "{\"sourceType\":\"hn\",\"url\":\"https://x.com/a\",\"title\":\"A\"}\n\n"
	rows, err := parseJSONL(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRow_PublishedAtDefaultsToNilWhenMissing(t *testing.T) {
	csvData := "sourceType,url,title,publishedAt\n" +
		"devto,https://dev.to/a,Some Title,\n"
	rows, err := parseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Nil(t, rows[0].PublishedAt)
}
