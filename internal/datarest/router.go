// Package datarest exposes the account and bookmark repositories directly
// as HAL resources: paged collections, items, associations and the
// repositories' finder methods under /search.
package datarest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/bookmarks/internal/hateoas"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// Deps holds the repositories to expose. HashPassword converts passwords
// posted to /accounts into their stored form.
type Deps struct {
	Accounts     store.AccountRepository
	Bookmarks    store.BookmarkRepository
	HashPassword func(string) (string, error)
	BaseURL      string
	Log          logger.Logger
}

type handler struct {
	accounts     store.AccountRepository
	bookmarks    store.BookmarkRepository
	hashPassword func(string) (string, error)
	baseURL      string
	log          logger.Logger
}

func NewRouter(deps Deps) (chi.Router, error) {
	if deps.Accounts == nil || deps.Bookmarks == nil || deps.HashPassword == nil {
		return nil, errors.New("datarest: accounts, bookmarks and HashPassword are required")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	h := &handler{
		accounts:     deps.Accounts,
		bookmarks:    deps.Bookmarks,
		hashPassword: deps.HashPassword,
		baseURL:      deps.BaseURL,
		log:          deps.Log,
	}

	r := chi.NewRouter()
	r.Get("/", h.root)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Get("/search", h.accountSearch)
		r.Get("/search/findByUsername", h.findByUsername)
		r.Get("/{id}", h.getAccount)
		r.Get("/{id}/bookmarks", h.accountBookmarks)
	})

	r.Route("/bookmarks", func(r chi.Router) {
		r.Get("/", h.listBookmarks)
		r.Post("/", h.createBookmark)
		r.Get("/search", h.bookmarkSearch)
		r.Get("/search/findByAccountUsername", h.findByAccountUsername)
		r.Get("/{id}", h.getBookmark)
		r.Get("/{id}/account", h.bookmarkAccount)
	})
	return r, nil
}

func (h *handler) base(r *http.Request) string {
	return hateoas.RequestBase(r, h.baseURL)
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	base := h.base(r)
	writeHAL(w, http.StatusOK, struct {
		Links Links `json:"_links"`
	}{Links{
		"accounts":  {Href: collectionHref(base, "accounts") + pagedTemplate, Templated: true},
		"bookmarks": {Href: collectionHref(base, "bookmarks") + pagedTemplate, Templated: true},
	}})
}

// idParam parses the {id} path segment. Non-numeric IDs name no resource.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// lookupFailed answers a failed repository read: 404 for ErrNotFound,
// otherwise a logged 500.
func (h *handler) lookupFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		notFound(w)
		return
	}
	h.log.Error("datarest lookup", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
