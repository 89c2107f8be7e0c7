package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

func mustCreateSession(t *testing.T, s *Store, userID, tokenHash string) *domain.Session {
	t.Helper()
	now := time.Now()
	sess := &domain.Session{
		ID:               id.MustGenerate("session"),
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(720 * time.Hour),
	}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestCreateSession_GetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	sess := mustCreateSession(t, s, u.ID, "hash-1")

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != u.ID || got.RefreshTokenHash != "hash-1" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestGetSessionByRefreshToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	sess := mustCreateSession(t, s, u.ID, "hash-lookup")

	got, err := s.GetSessionByRefreshToken(ctx, "hash-lookup")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("got session %s, want %s", got.ID, sess.ID)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash-unknown"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSession_RotatesTokenHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	sess := mustCreateSession(t, s, u.ID, "hash-old")

	sess.RefreshTokenHash = "hash-new"
	sess.LastSeenAt = time.Now()
	if err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("update session: %v", err)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash-old"); !errors.Is(err, store.ErrNotFound) {
		t.Error("old hash should no longer resolve")
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-new"); err != nil {
		t.Errorf("new hash should resolve: %v", err)
	}
}

func TestDeleteAllUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	mustCreateSession(t, s, alice.ID, "a1")
	mustCreateSession(t, s, alice.ID, "a2")
	kept := mustCreateSession(t, s, bob.ID, "b1")

	if err := s.DeleteAllUserSessions(ctx, alice.ID); err != nil {
		t.Fatalf("delete sessions: %v", err)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "a1"); !errors.Is(err, store.ErrNotFound) {
		t.Error("alice sessions should be gone")
	}
	if _, err := s.GetSession(ctx, kept.ID); err != nil {
		t.Errorf("bob's session should survive: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")

	expired := mustCreateSession(t, s, u.ID, "expired")
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	if err := s.UpdateSession(ctx, expired); err != nil {
		t.Fatalf("expire session: %v", err)
	}
	live := mustCreateSession(t, s, u.ID, "live")

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}
	if _, err := s.GetSession(ctx, live.ID); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
