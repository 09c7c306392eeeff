package repository

import (
	"context"
	"errors"
	"fmt"

	"frictionstudy/internal/model"
)

var (
	ErrUnknownStream = errors.New("unknown stream")
	ErrRowWidth      = errors.New("row width does not match stream layout")
)

// Sink is the append-only backing store. Append is the only write: rows are
// never updated or deleted, and callers never read before writing.
type Sink interface {
	Append(ctx context.Context, stream model.Stream, row []interface{}) error
}

// AppendRecord appends r to its own stream
func AppendRecord(ctx context.Context, sink Sink, r model.Record) error {
	return sink.Append(ctx, r.Stream(), r.Row())
}

func checkRow(stream model.Stream, row []interface{}) ([]string, error) {
	columns, ok := model.StreamColumns[stream]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}
	if len(row) != len(columns) {
		return nil, fmt.Errorf("%w: %s expects %d fields, got %d", ErrRowWidth, stream, len(columns), len(row))
	}
	return columns, nil
}
