package bookmarks

import (
	"errors"
	"fmt"
)

var (
	// ErrBookmarkNotFound is returned when a bookmark ID does not resolve, or
	// resolves to a bookmark owned by a different account.
	ErrBookmarkNotFound = errors.New("bookmark not found")

	// ErrInvalidInput is returned when a request is missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// UserNotFoundError is returned whenever a username does not resolve to an
// account. It is never retried or recovered.
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("could not find user '%s'.", e.Username)
}

// IsUserNotFound reports whether err is, or wraps, a *UserNotFoundError.
func IsUserNotFound(err error) bool {
	var unf *UserNotFoundError
	return errors.As(err, &unf)
}

// BookmarkNotFoundMessage renders the client-facing message for a missing bookmark.
func BookmarkNotFoundMessage(id int64) string {
	return fmt.Sprintf("could not find bookmark '%d'.", id)
}
