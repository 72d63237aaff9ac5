package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job is one unit of work moving through a named queue. The envelope is
// JSON-encoded and stored verbatim as the Redis list/sorted-set element, so
// the same encoded bytes that were pushed are the bytes removed on ack or
// retry (required for exact-match LREM).
type Job struct {
	ID        string          `json:"id"`
	Queue     string          `json:"queue"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

func newJob(queue string, payload json.RawMessage) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Queue:     queue,
		Payload:   payload,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
}

func (j *Job) encode() (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJob(raw string) (*Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return nil, err
	}
	return &j, nil
}
