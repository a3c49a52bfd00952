package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joestump/bookmarks/internal/bookmarks"
	"github.com/joestump/bookmarks/internal/hateoas"
	"github.com/joestump/bookmarks/internal/logger"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorWriter renders an error in the envelope of one API variant.
type errorWriter func(w http.ResponseWriter, status int, message, code string)

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// writeVndError drops the code; vnd.error carries only the message.
func writeVndError(w http.ResponseWriter, status int, message, _ string) {
	hateoas.WriteVndError(w, status, message)
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a bookmarks.Service error onto an HTTP response.
// bookmarkID names the bookmark the request was about, if any.
func writeServiceError(w http.ResponseWriter, write errorWriter, log logger.Logger, err error, bookmarkID int64) {
	switch {
	case bookmarks.IsUserNotFound(err):
		write(w, http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, bookmarks.ErrBookmarkNotFound):
		write(w, http.StatusNotFound, bookmarks.BookmarkNotFoundMessage(bookmarkID), "BOOKMARK_NOT_FOUND")
	case errors.Is(err, bookmarks.ErrInvalidInput):
		write(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	default:
		log.Error("bookmark request failed", logger.Error(err))
		write(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
