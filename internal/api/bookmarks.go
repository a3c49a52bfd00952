package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/bookmarks/internal/bookmarks"
	"github.com/joestump/bookmarks/internal/hateoas"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// bookmarksHandler serves the bookmark collection of one owner. How the
// owner is found (path or principal) and how responses are dressed
// (plain or with links) vary by API variant.
type bookmarksHandler struct {
	svc        *bookmarks.Service
	linker     *hateoas.Linker
	baseURL    string
	hypermedia bool
	writeErr   errorWriter
	owner      func(r *http.Request) string
	log        logger.Logger
}

func (h *bookmarksHandler) register(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{bookmarkId}", h.Get)
}

// Create stores a bookmark and points Location at it.
func (h *bookmarksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErr(w, http.StatusBadRequest, "malformed JSON body", "BAD_REQUEST")
		return
	}

	b, err := h.svc.CreateBookmark(r.Context(), h.owner(r), req.URI, req.Description)
	if err != nil {
		writeServiceError(w, h.writeErr, h.log, err, 0)
		return
	}

	self, err := h.linker.Self(hateoas.RequestBase(r, h.baseURL), b)
	if err != nil {
		writeServiceError(w, h.writeErr, h.log, err, b.ID)
		return
	}
	w.Header().Set("Location", self)
	writeJSON(w, http.StatusCreated, toBookmarkResponse(b))
}

// Get returns one bookmark of the owner.
func (h *bookmarksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkId"), 10, 64)
	if err != nil {
		h.writeErr(w, http.StatusBadRequest, "bookmark id must be numeric", "INVALID_ID")
		return
	}

	b, err := h.svc.GetBookmark(r.Context(), h.owner(r), id)
	if err != nil {
		writeServiceError(w, h.writeErr, h.log, err, id)
		return
	}

	if !h.hypermedia {
		writeJSON(w, http.StatusOK, toBookmarkResponse(b))
		return
	}
	res, err := h.resource(r, b)
	if err != nil {
		writeServiceError(w, h.writeErr, h.log, err, id)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// List returns every bookmark of the owner.
func (h *bookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListBookmarks(r.Context(), h.owner(r))
	if err != nil {
		writeServiceError(w, h.writeErr, h.log, err, 0)
		return
	}

	if !h.hypermedia {
		out := make([]BookmarkResponse, 0, len(list))
		for _, b := range list {
			out = append(out, toBookmarkResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	out := make([]hateoas.Resource[BookmarkResponse], 0, len(list))
	for _, b := range list {
		res, err := h.resource(r, b)
		if err != nil {
			writeServiceError(w, h.writeErr, h.log, err, b.ID)
			return
		}
		out = append(out, res)
	}
	writeJSON(w, http.StatusOK, hateoas.NewResources(out))
}

func (h *bookmarksHandler) resource(r *http.Request, b *store.Bookmark) (hateoas.Resource[BookmarkResponse], error) {
	links, err := h.linker.ForBookmark(hateoas.RequestBase(r, h.baseURL), b)
	if err != nil {
		return hateoas.Resource[BookmarkResponse]{}, err
	}
	return hateoas.Resource[BookmarkResponse]{Name: "bookmark", Content: toBookmarkResponse(b), Links: links}, nil
}
