// Package hateoas builds the resource links and envelopes returned by the
// hypermedia API variants.
package hateoas

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jtacoma/uritemplates"

	"github.com/joestump/bookmarks/internal/store"
)

// Well-known relation names.
const (
	RelSelf        = "self"
	RelBookmarks   = "bookmarks"
	RelBookmarkURI = "bookmark-uri"
)

// Link is a relation name plus the URI it points at.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Links is an ordered list of links.
type Links []Link

// Get returns the first link with the given rel.
func (ls Links) Get(rel string) (Link, bool) {
	for _, l := range ls {
		if l.Rel == rel {
			return l, true
		}
	}
	return Link{}, false
}

// Templates are RFC 6570 URI templates for the bookmark collection and a
// single bookmark. Both may reference {user}; Item may reference {id}.
type Templates struct {
	Collection string
	Item       string
}

var (
	// PathTemplates address bookmarks by owner username in the path.
	PathTemplates = Templates{Collection: "/{user}/bookmarks", Item: "/{user}/bookmarks/{id}"}

	// PrincipalTemplates address bookmarks relative to the authenticated
	// principal, so the owner never appears in the path.
	PrincipalTemplates = Templates{Collection: "/bookmarks", Item: "/bookmarks/{id}"}
)

// Linker derives bookmark links from already-known fields. It holds no
// per-request state and is safe for concurrent use.
type Linker struct {
	collection *uritemplates.UriTemplate
	item       *uritemplates.UriTemplate
}

func NewLinker(t Templates) (*Linker, error) {
	collection, err := uritemplates.Parse(t.Collection)
	if err != nil {
		return nil, fmt.Errorf("parse collection template %q: %w", t.Collection, err)
	}
	item, err := uritemplates.Parse(t.Item)
	if err != nil {
		return nil, fmt.Errorf("parse item template %q: %w", t.Item, err)
	}
	return &Linker{collection: collection, item: item}, nil
}

// MustLinker is NewLinker for templates known at compile time.
func MustLinker(t Templates) *Linker {
	l, err := NewLinker(t)
	if err != nil {
		panic(err)
	}
	return l
}

// Collection returns the href of username's bookmark collection, prefixed by base.
func (l *Linker) Collection(base, username string) (string, error) {
	path, err := l.collection.Expand(map[string]interface{}{"user": username})
	if err != nil {
		return "", err
	}
	return base + path, nil
}

// Self returns the href of a single bookmark, prefixed by base.
func (l *Linker) Self(base string, b *store.Bookmark) (string, error) {
	path, err := l.item.Expand(map[string]interface{}{
		"user": ownerUsername(b),
		"id":   strconv.FormatInt(b.ID, 10),
	})
	if err != nil {
		return "", err
	}
	return base + path, nil
}

// ForBookmark returns the bookmark's own URI, its owner's collection and its
// self link, in that order.
func (l *Linker) ForBookmark(base string, b *store.Bookmark) (Links, error) {
	collection, err := l.Collection(base, ownerUsername(b))
	if err != nil {
		return nil, err
	}
	self, err := l.Self(base, b)
	if err != nil {
		return nil, err
	}
	return Links{
		{Rel: RelBookmarkURI, Href: b.URI},
		{Rel: RelBookmarks, Href: collection},
		{Rel: RelSelf, Href: self},
	}, nil
}

func ownerUsername(b *store.Bookmark) string {
	if b.Account == nil {
		return ""
	}
	return b.Account.Username
}

// RequestBase returns the scheme and host links should be built against.
// A configured base wins; otherwise it is derived from the request, honoring
// X-Forwarded-Proto from a fronting proxy.
func RequestBase(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimSuffix(configured, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}
