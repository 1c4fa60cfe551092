package fetcher

import "errors"

var (
	// ErrInvalidURL indicates a URL that cannot be fetched safely.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates the hostname resolves to a private address.
	ErrPrivateIP = errors.New("URL resolves to private IP")

	// ErrTimeout indicates the fetch exceeded its time budget.
	ErrTimeout = errors.New("content fetch timed out")

	// ErrBodyTooLarge indicates the response exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTooManyRedirects indicates the redirect chain was too long.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrExtractionFailed indicates no readable content was found.
	ErrExtractionFailed = errors.New("content extraction failed")
)
