package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// maxTitleLength matches the bounded title column in the articles table.
const maxTitleLength = 512

// ValidateSourceURL validates the format of an article source URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateSourceURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "sourceUrl", Message: "source URL is required"}
	}

	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "sourceUrl",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "sourceUrl", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "sourceUrl", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateArticle validates an article before it is written to the store.
// It checks required fields and length bounds; the summary length bound is
// enforced earlier by the ingestion sanitizer and rechecked here.
func ValidateArticle(a *Article) error {
	if a == nil {
		return &ValidationError{Field: "article", Message: "article is required"}
	}

	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(a.Title) > maxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title must not exceed %d characters", maxTitleLength),
		}
	}

	if err := ValidateSourceURL(a.SourceURL); err != nil {
		return err
	}

	if a.Status != "" && a.Status != StatusDraft && a.Status != StatusPublished {
		return &ValidationError{Field: "status", Message: "status must be DRAFT or PUBLISHED"}
	}

	return nil
}
