package repository

import (
	"context"
	"fmt"
	"sync"

	"frictionstudy/internal/model"
)

// MemorySink keeps rows in process. Used for local runs and tests; failures
// can be injected per stream. Like the mongo index, a second Responses row
// for the same (session_id, item_id) is dropped and reported as success.
type MemorySink struct {
	mu       sync.Mutex
	rows     map[model.Stream][][]interface{}
	failures map[model.Stream]error
	answered map[responseKey]bool
}

type responseKey struct {
	sessionID interface{}
	itemID    interface{}
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{
		rows:     make(map[model.Stream][][]interface{}),
		failures: make(map[model.Stream]error),
		answered: make(map[responseKey]bool),
	}
}

func (s *MemorySink) Append(ctx context.Context, stream model.Stream, row []interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := checkRow(stream, row); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures[stream]; err != nil {
		return fmt.Errorf("append to %s: %w", stream, err)
	}
	if stream == model.StreamResponses {
		key := responseKey{sessionID: row[0], itemID: row[3]}
		if s.answered[key] {
			return nil
		}
		s.answered[key] = true
	}
	stored := make([]interface{}, len(row))
	copy(stored, row)
	s.rows[stream] = append(s.rows[stream], stored)
	return nil
}

// FailWith makes every later append to stream fail with err. A nil err
// clears the failure.
func (s *MemorySink) FailWith(stream model.Stream, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.failures, stream)
		return
	}
	s.failures[stream] = err
}

// Rows returns a copy of everything appended to stream, in append order
func (s *MemorySink) Rows(stream model.Stream) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]interface{}, len(s.rows[stream]))
	copy(out, s.rows[stream])
	return out
}
