// Package bookmarks implements the bookmark operations shared by every API
// variant: resolve the owner by username, then act.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joestump/bookmarks/internal/metrics"
	"github.com/joestump/bookmarks/internal/store"
)

// Service is stateless; all state lives behind the repositories, so a single
// Service is safe for concurrent use.
type Service struct {
	accounts  store.AccountRepository
	bookmarks store.BookmarkRepository
}

func NewService(accounts store.AccountRepository, bookmarks store.BookmarkRepository) *Service {
	return &Service{accounts: accounts, bookmarks: bookmarks}
}

// CreateBookmark stores a new bookmark owned by ownerUsername. The owner is
// resolved before the input is checked or anything is written, so an unknown
// owner always yields a UserNotFoundError and leaves no trace.
func (s *Service) CreateBookmark(ctx context.Context, ownerUsername, uri, description string) (*store.Bookmark, error) {
	account, err := s.resolve(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: uri is required", ErrInvalidInput)
	}

	b, err := s.bookmarks.Save(ctx, &store.Bookmark{
		Account:     account,
		AccountID:   account.ID,
		URI:         uri,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	if b.Account == nil {
		b.Account = account
	}
	metrics.BookmarksCreatedTotal.Inc()
	return b, nil
}

// GetBookmark returns bookmark id if it belongs to ownerUsername. A bookmark
// owned by someone else is reported as ErrBookmarkNotFound.
func (s *Service) GetBookmark(ctx context.Context, ownerUsername string, id int64) (*store.Bookmark, error) {
	account, err := s.resolve(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}

	b, err := s.bookmarks.FindOne(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark %d: %w", id, err)
	}
	if ownerID(b) != account.ID {
		return nil, ErrBookmarkNotFound
	}
	if b.Account == nil {
		b.Account = account
	}
	return b, nil
}

// ListBookmarks returns all bookmarks owned by ownerUsername in storage order.
func (s *Service) ListBookmarks(ctx context.Context, ownerUsername string) ([]*store.Bookmark, error) {
	if _, err := s.resolve(ctx, ownerUsername); err != nil {
		return nil, err
	}
	list, err := s.bookmarks.FindByAccountUsername(ctx, ownerUsername)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks for %s: %w", ownerUsername, err)
	}
	return list, nil
}

func (s *Service) resolve(ctx context.Context, username string) (*store.Account, error) {
	a, err := s.accounts.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &UserNotFoundError{Username: username}
	}
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", username, err)
	}
	return a, nil
}

func ownerID(b *store.Bookmark) int64 {
	if b.Account != nil {
		return b.Account.ID
	}
	return b.AccountID
}
