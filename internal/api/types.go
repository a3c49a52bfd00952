package api

import "github.com/joestump/bookmarks/internal/store"

// BookmarkRequest is the body of POST .../bookmarks.
type BookmarkRequest struct {
	URI         string `json:"uri"`
	Description string `json:"description"`
}

// BookmarkResponse is the public representation of a bookmark. The owning
// account is never serialized.
type BookmarkResponse struct {
	ID          int64  `json:"id"`
	URI         string `json:"uri"`
	Description string `json:"description"`
}

func toBookmarkResponse(b *store.Bookmark) BookmarkResponse {
	return BookmarkResponse{ID: b.ID, URI: b.URI, Description: b.Description}
}
