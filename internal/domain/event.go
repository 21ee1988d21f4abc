package domain

import (
	"context"
	"time"
)

// RawEvent is one TAF JSON document as fetched from the raw topic, with the
// source coordinates needed to log it. Commit acknowledges the message on the
// raw topic and may be nil in tests.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is a serialized ConvertedMessage keyed by its message ID, with
// location, status, issue_count and processed_at headers.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
