package admin

import "errors"

var (
	// ErrInvalidArticleID indicates a non-positive article ID.
	ErrInvalidArticleID = errors.New("admin: invalid article id")

	// ErrArticleNotFound indicates the article does not exist.
	ErrArticleNotFound = errors.New("admin: article not found")
)
