package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a route regex with its normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes, most specific first.
// Pre-compiled at init so normalization stays under 1μs per call.
var pathPatterns = []*PathPattern{
	// Public news routes
	{Pattern: regexp.MustCompile(`^/api/public/news/category/\d+$`), Template: "/api/public/news/category/:id"},
	{Pattern: regexp.MustCompile(`^/api/public/news/related/\d+$`), Template: "/api/public/news/related/:id"},
	{Pattern: regexp.MustCompile(`^/api/public/news/\d+$`), Template: "/api/public/news/:id"},

	// Weather routes keyed by city name
	{Pattern: regexp.MustCompile(`^/api/public/weather/refresh/[^/]+$`), Template: "/api/public/weather/refresh/:city"},
	{Pattern: regexp.MustCompile(`^/api/public/weather/[^/]+$`), Template: "/api/public/weather/:city"},

	// Notification routes
	{Pattern: regexp.MustCompile(`^/api/notifications/read/\d+$`), Template: "/api/notifications/read/:id"},

	// Admin routes
	{Pattern: regexp.MustCompile(`^/api/admin/articles/\d+$`), Template: "/api/admin/articles/:id"},
	{Pattern: regexp.MustCompile(`^/api/admin/crawl/[^/]+$`), Template: "/api/admin/crawl/:job"},
}

// staticExceptions are static paths that would otherwise be swallowed
// by a dynamic template above.
var staticExceptions = map[string]bool{
	"/api/public/weather/update": true,
}

// NormalizePath collapses dynamic URL paths into templates so metrics
// labels stay bounded. IDs become ":id", city names become ":city".
// Static paths pass through unchanged.
//
// Examples:
//
//	NormalizePath("/api/public/news/123")        // "/api/public/news/:id"
//	NormalizePath("/api/public/weather/tokyo")   // "/api/public/weather/:city"
//	NormalizePath("/api/public/weather/update")  // unchanged
//	NormalizePath("/api/public/news/latest")     // unchanged
//	NormalizePath("/health")                     // unchanged
//
// Query parameters and trailing slashes are stripped first:
//
//	NormalizePath("/api/public/news/123?page=1") // "/api/public/news/:id"
//	NormalizePath("/api/public/news/123/")       // "/api/public/news/:id"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if staticExceptions[path] {
		return path
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// Unmatched paths are static routes like /health or /metrics and
	// pass through as-is.
	return path
}
