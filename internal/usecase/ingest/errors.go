package ingest

import "errors"

var (
	// ErrDecode indicates a payload that cannot be parsed as an article
	// message. Such messages are poison: they are logged, counted, and
	// dropped, never retried.
	ErrDecode = errors.New("ingest: undecodable message")

	// ErrMissingSourceURL indicates a message without a source URL.
	// The source URL is the dedup key, so the message cannot be ingested.
	ErrMissingSourceURL = errors.New("ingest: missing source_url")

	// ErrMissingTitle indicates a message without a title.
	ErrMissingTitle = errors.New("ingest: missing title")
)
