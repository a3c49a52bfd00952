package datarest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

type accountInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	ctx := r.Context()

	total, err := h.accounts.Count(ctx)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	list, err := h.accounts.FindAll(ctx, page.store())
	if err != nil {
		h.lookupFailed(w, err)
		return
	}

	base := h.base(r)
	models := make([]AccountModel, 0, len(list))
	for _, a := range list {
		models = append(models, toAccountModel(base, a))
	}
	links := Links{"search": {Href: searchHref(base, "accounts")}}
	c := newCollection("accounts", models, links)
	c.Page = page.meta(collectionHref(base, "accounts"), total, links)
	writeHAL(w, http.StatusOK, c)
}

func (h *handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	a, err := h.accounts.FindOne(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	writeHAL(w, http.StatusOK, toAccountModel(h.base(r), a))
}

func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var in accountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := h.hashPassword(in.Password)
	if err != nil {
		h.log.Error("hash password", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	a, err := h.accounts.Save(r.Context(), &store.Account{Username: in.Username, Password: hash})
	if errors.Is(err, store.ErrDuplicateUsername) {
		writeError(w, http.StatusConflict, "username '"+strings.TrimSpace(in.Username)+"' is already taken")
		return
	}
	if err != nil {
		h.log.Error("save account", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	m := toAccountModel(h.base(r), a)
	w.Header().Set("Location", m.Links["self"].Href)
	writeHAL(w, http.StatusCreated, m)
}

// accountBookmarks serves the account's bookmarks association.
func (h *handler) accountBookmarks(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w)
		return
	}
	ctx := r.Context()
	a, err := h.accounts.FindOne(ctx, id)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	list, err := h.bookmarks.FindByAccountUsername(ctx, a.Username)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}

	base := h.base(r)
	writeHAL(w, http.StatusOK, newCollection("bookmarks", bookmarkModels(base, list), Links{
		"self": {Href: associationHref(base, "accounts", a.ID, "bookmarks")},
	}))
}

func (h *handler) accountSearch(w http.ResponseWriter, r *http.Request) {
	base := h.base(r)
	writeHAL(w, http.StatusOK, struct {
		Links Links `json:"_links"`
	}{Links{
		"findByUsername": {Href: finderHref(base, "accounts", "findByUsername") + usernameQuery, Templated: true},
		"self":           {Href: searchHref(base, "accounts")},
	}})
}

func (h *handler) findByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		notFound(w)
		return
	}
	a, err := h.accounts.FindByUsername(r.Context(), username)
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	writeHAL(w, http.StatusOK, toAccountModel(h.base(r), a))
}
