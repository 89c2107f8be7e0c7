package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/linkvaultapp/linkvault-server/internal/store"
)

func TestFindOrCreateTag_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")

	first, err := s.FindOrCreateTag(ctx, u.ID, "golang")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	second, err := s.FindOrCreateTag(ctx, u.ID, "golang")
	if err != nil {
		t.Fatalf("find tag: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same name should resolve to same tag: %s != %s", first.ID, second.ID)
	}
}

func TestFindOrCreateTag_PerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")

	at, err := s.FindOrCreateTag(ctx, alice.ID, "shared-name")
	if err != nil {
		t.Fatalf("alice tag: %v", err)
	}
	bt, err := s.FindOrCreateTag(ctx, bob.ID, "shared-name")
	if err != nil {
		t.Fatalf("bob tag: %v", err)
	}
	if at.ID == bt.ID {
		t.Error("tags with the same name must be distinct per user")
	}
}

func TestSetBookmarkTags_ReplacesWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	b := mustCreateBookmark(t, s, u.ID, "", "article")

	if err := s.SetBookmarkTags(ctx, b.ID, u.ID, []string{"old", "keep"}); err != nil {
		t.Fatalf("initial tags: %v", err)
	}
	if err := s.SetBookmarkTags(ctx, b.ID, u.ID, []string{"keep", "new"}); err != nil {
		t.Fatalf("replace tags: %v", err)
	}

	names, err := s.GetBookmarkTags(ctx, b.ID)
	if err != nil {
		t.Fatalf("get tags: %v", err)
	}
	if len(names) != 2 || names[0] != "keep" || names[1] != "new" {
		t.Errorf("tags = %v, want [keep new]", names)
	}

	// The replaced tag row survives even though nothing links to it.
	tags, err := s.ListTags(ctx, u.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 3 {
		t.Errorf("got %d tags, want 3 (old keep new)", len(tags))
	}
}

func TestSetBookmarkTags_DuplicateNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	b := mustCreateBookmark(t, s, u.ID, "", "article")

	// The same name twice collapses to one link.
	if err := s.SetBookmarkTags(ctx, b.ID, u.ID, []string{"dup", "dup"}); err != nil {
		t.Fatalf("set tags: %v", err)
	}

	names, err := s.GetBookmarkTags(ctx, b.ID)
	if err != nil {
		t.Fatalf("get tags: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("tags = %v, want single entry", names)
	}
}

func TestSetBookmarkTags_Empty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	b := mustCreateBookmark(t, s, u.ID, "", "article")

	if err := s.SetBookmarkTags(ctx, b.ID, u.ID, []string{"temp"}); err != nil {
		t.Fatalf("set tags: %v", err)
	}
	if err := s.SetBookmarkTags(ctx, b.ID, u.ID, nil); err != nil {
		t.Fatalf("clear tags: %v", err)
	}

	names, err := s.GetBookmarkTags(ctx, b.ID)
	if err != nil {
		t.Fatalf("get tags: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("tags = %v, want none", names)
	}
}

func TestSetBookmarkTags_WrongOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	b := mustCreateBookmark(t, s, alice.ID, "", "article")

	err := s.SetBookmarkTags(ctx, b.ID, bob.ID, []string{"sneaky"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user tagging: err = %v, want ErrNotFound", err)
	}
}
