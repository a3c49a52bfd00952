package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/store"
	"github.com/joestump/bookmarks/internal/testutil"
)

func newTokenTestEnv(t *testing.T) (*auth.SQLTokenStore, int64) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ts := auth.NewSQLTokenStore(db)

	acct, err := store.NewAccountStore(db).Save(context.Background(), &store.Account{Username: "kis", Password: "x"})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return ts, acct.ID
}

func TestGenerateToken(t *testing.T) {
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if len(plaintext) < 10 {
		t.Errorf("plaintext too short: %q", plaintext)
	}
	if !strings.HasPrefix(plaintext, auth.TokenPrefix) {
		t.Errorf("plaintext = %q, want prefix %q", plaintext, auth.TokenPrefix)
	}
	if got := auth.HashToken(plaintext); got != hash {
		t.Errorf("HashToken = %q, want %q", got, hash)
	}

	other, _, _ := auth.GenerateToken()
	if other == plaintext {
		t.Error("two generated tokens are identical")
	}
}

func TestTokenStore_CreateAndGetByHash(t *testing.T) {
	ts, accountID := newTokenTestEnv(t)
	ctx := context.Background()

	_, hash, _ := auth.GenerateToken()
	rec, err := ts.Create(ctx, accountID, "android-bookmarks", "write", hash, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.AccountID != accountID {
		t.Errorf("AccountID = %d, want %d", rec.AccountID, accountID)
	}
	if rec.ClientID != "android-bookmarks" || rec.Scope != "write" {
		t.Errorf("client/scope = %q/%q", rec.ClientID, rec.Scope)
	}

	got, err := ts.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
	if !got.Usable(time.Now()) {
		t.Error("fresh token should be usable")
	}
}

func TestTokenStore_GetByHash_NotFound(t *testing.T) {
	ts, _ := newTokenTestEnv(t)

	_, err := ts.GetByHash(context.Background(), "nonexistent-hash")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByHash(nonexistent) = %v, want ErrNotFound", err)
	}
}

func TestTokenStore_Revoke(t *testing.T) {
	ts, accountID := newTokenTestEnv(t)
	ctx := context.Background()

	_, hash, _ := auth.GenerateToken()
	rec, err := ts.Create(ctx, accountID, "android-bookmarks", "write", hash, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ts.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	got, err := ts.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash after revoke: %v", err)
	}
	if !got.RevokedAt.Valid {
		t.Error("expected RevokedAt to be set after revoke")
	}
	if got.Usable(time.Now()) {
		t.Error("revoked token should not be usable")
	}
}

func TestTokenStore_Revoke_NotFound(t *testing.T) {
	ts, _ := newTokenTestEnv(t)

	err := ts.Revoke(context.Background(), "nonexistent-id")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Revoke(nonexistent) = %v, want ErrNotFound", err)
	}
}

func TestTokenStore_ExpiredToken(t *testing.T) {
	ts, accountID := newTokenTestEnv(t)
	ctx := context.Background()

	_, hash, _ := auth.GenerateToken()
	expired := time.Now().Add(-1 * time.Hour)
	if _, err := ts.Create(ctx, accountID, "android-bookmarks", "write", hash, &expired); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The store returns the record; callers decide whether it is usable.
	got, err := ts.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !got.ExpiresAt.Valid {
		t.Fatal("expected ExpiresAt to be set")
	}
	if got.Usable(time.Now()) {
		t.Error("expired token should not be usable")
	}
}

func TestTokenStore_UpdateLastUsed(t *testing.T) {
	ts, accountID := newTokenTestEnv(t)
	ctx := context.Background()

	_, hash, _ := auth.GenerateToken()
	rec, err := ts.Create(ctx, accountID, "android-bookmarks", "write", hash, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.LastUsedAt.Valid {
		t.Error("expected LastUsedAt to be null initially")
	}

	if err := ts.UpdateLastUsed(ctx, rec.ID); err != nil {
		t.Fatalf("UpdateLastUsed: %v", err)
	}

	got, err := ts.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !got.LastUsedAt.Valid {
		t.Error("expected LastUsedAt to be set after update")
	}
}

func TestTokenStore_CreateRequiresAccount(t *testing.T) {
	ts, _ := newTokenTestEnv(t)

	_, hash, _ := auth.GenerateToken()
	if _, err := ts.Create(context.Background(), 9999, "android-bookmarks", "write", hash, nil); err == nil {
		t.Error("expected foreign key violation for unknown account")
	}
}
