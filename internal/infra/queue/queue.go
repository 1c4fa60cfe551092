// Package queue connects the crawler output stream to the ingestion
// pipeline over Redis Streams.
//
// Crawlers XADD one entry per scraped article to the stream; the worker
// consumes them through a consumer group so that restarts resume from
// pending entries instead of losing or duplicating work.
package queue

import "context"

// Message is one raw entry read from the stream.
type Message struct {
	// ID is the Redis Stream entry ID, used for acknowledgement.
	ID string
	// Payload is the raw article JSON produced by a crawler.
	Payload []byte
}

// Handler processes one message. Returning nil acknowledges the message;
// returning an error leaves it pending for redelivery. Handlers must
// swallow permanent failures (malformed payloads) and return nil so that
// poison messages are not redelivered forever.
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
