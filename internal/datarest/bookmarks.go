package datarest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// bookmarkInput names its owner by the account's URI, as HAL clients do.
type bookmarkInput struct {
	URI         string `json:"uri"`
	Description string `json:"description"`
	Account     string `json:"account"`
}

func bookmarkModels(base string, list []*store.Bookmark) []BookmarkModel {
	models := make([]BookmarkModel, 0, len(list))
	for _, b := range list {
		models = append(models, toBookmarkModel(base, b))
	}
	return models
}

func (h *handler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	ctx := r.Context()

	total, err := h.bookmarks.Count(ctx)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	list, err := h.bookmarks.FindAll(ctx, page.store())
	if err != nil {
		h.lookupFailed(w, err)
		return
	}

	base := h.base(r)
	links := Links{"search": {Href: searchHref(base, "bookmarks")}}
	c := newCollection("bookmarks", bookmarkModels(base, list), links)
	c.Page = page.meta(collectionHref(base, "bookmarks"), total, links)
	writeHAL(w, http.StatusOK, c)
}

func (h *handler) getBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	b, err := h.bookmarks.FindOne(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	writeHAL(w, http.StatusOK, toBookmarkModel(h.base(r), b))
}

// bookmarkAccount serves the bookmark's owner association.
func (h *handler) bookmarkAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	ctx := r.Context()
	b, err := h.bookmarks.FindOne(ctx, id)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	owner := b.Account
	if owner == nil {
		if owner, err = h.accounts.FindOne(ctx, b.AccountID); err != nil {
			h.lookupFailed(w, err)
			return
		}
	}
	writeHAL(w, http.StatusOK, toAccountModel(h.base(r), owner))
}

func (h *handler) createBookmark(w http.ResponseWriter, r *http.Request) {
	var in bookmarkInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if strings.TrimSpace(in.URI) == "" {
		writeError(w, http.StatusBadRequest, "uri is required")
		return
	}
	accountID, ok := parseAccountRef(in.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "account must be an account URI such as /accounts/1")
		return
	}

	ctx := r.Context()
	owner, err := h.accounts.FindOne(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "could not find account '"+strconv.FormatInt(accountID, 10)+"'.")
		return
	}
	if err != nil {
		h.lookupFailed(w, err)
		return
	}

	b, err := h.bookmarks.Save(ctx, &store.Bookmark{Account: owner, URI: in.URI, Description: in.Description})
	if err != nil {
		h.log.Error("save bookmark", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	m := toBookmarkModel(h.base(r), b)
	w.Header().Set("Location", m.Links["self"].Href)
	writeHAL(w, http.StatusCreated, m)
}

// parseAccountRef extracts the ID from an account URI, absolute or not:
// ".../accounts/{id}".
func parseAccountRef(ref string) (int64, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Path == "" {
		return 0, false
	}
	parts := strings.Split(strings.TrimSuffix(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != "accounts" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *handler) bookmarkSearch(w http.ResponseWriter, r *http.Request) {
	base := h.base(r)
	writeHAL(w, http.StatusOK, struct {
		Links Links `json:"_links"`
	}{Links{
		"findByAccountUsername": {Href: finderHref(base, "bookmarks", "findByAccountUsername") + usernameQuery, Templated: true},
		"self":                  {Href: searchHref(base, "bookmarks")},
	}})
}

func (h *handler) findByAccountUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	list, err := h.bookmarks.FindByAccountUsername(r.Context(), username)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	base := h.base(r)
	writeHAL(w, http.StatusOK, newCollection("bookmarks", bookmarkModels(base, list), Links{
		"self": {Href: usernameHref(finderHref(base, "bookmarks", "findByAccountUsername"), username)},
	}))
}
