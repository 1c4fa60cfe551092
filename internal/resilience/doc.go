// Package resilience groups the fault tolerance patterns used around
// external calls: circuit breakers for the cache and feed fetches, and
// retry with exponential backoff for transient failures.
//
// Usage:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchFeed()
//	})
//
//	err := retry.WithBackoff(ctx, retry.DefaultConfig(), func() error {
//	    return performOperation()
//	})
package resilience
