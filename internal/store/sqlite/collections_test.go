package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/linkvaultapp/linkvault-server/internal/store"
)

func TestCreateCollection_GetCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	c := mustCreateCollection(t, s, u.ID, "Reading", "")

	got, err := s.GetCollection(ctx, c.ID, u.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if got.Name != "Reading" {
		t.Errorf("name = %q, want Reading", got.Name)
	}
	if got.ParentID != "" {
		t.Errorf("parent = %q, want root", got.ParentID)
	}
}

func TestGetCollection_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	c := mustCreateCollection(t, s, alice.ID, "Private", "")

	_, err := s.GetCollection(ctx, c.ID, bob.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user get: err = %v, want ErrNotFound", err)
	}
}

func TestListCollections_BookmarkCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	reading := mustCreateCollection(t, s, u.ID, "Reading", "")
	empty := mustCreateCollection(t, s, u.ID, "Empty", "")
	mustCreateBookmark(t, s, u.ID, reading.ID, "one")
	mustCreateBookmark(t, s, u.ID, reading.ID, "two")

	colls, err := s.ListCollections(ctx, u.ID)
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(colls) != 2 {
		t.Fatalf("got %d collections, want 2", len(colls))
	}

	byID := map[string]int{}
	for _, c := range colls {
		byID[c.ID] = c.BookmarkCount
	}
	if byID[reading.ID] != 2 {
		t.Errorf("Reading count = %d, want 2", byID[reading.ID])
	}
	if byID[empty.ID] != 0 {
		t.Errorf("Empty count = %d, want 0", byID[empty.ID])
	}
}

func TestListCollections_OnlyOwn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	mustCreateCollection(t, s, alice.ID, "Alice stuff", "")
	mustCreateCollection(t, s, bob.ID, "Bob stuff", "")

	colls, err := s.ListCollections(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(colls) != 1 || colls[0].Name != "Alice stuff" {
		t.Errorf("alice should only see her own collections, got %v", colls)
	}
}

func TestUpdateCollection_Reparent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	parent := mustCreateCollection(t, s, u.ID, "Parent", "")
	child := mustCreateCollection(t, s, u.ID, "Child", "")

	child.ParentID = parent.ID
	child.Touch()
	if err := s.UpdateCollection(ctx, child); err != nil {
		t.Fatalf("update collection: %v", err)
	}

	got, err := s.GetCollection(ctx, child.ID, u.ID)
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if got.ParentID != parent.ID {
		t.Errorf("parent = %q, want %q", got.ParentID, parent.ID)
	}
}

func TestUpdateCollection_OtherUsersRowUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	c := mustCreateCollection(t, s, alice.ID, "Private", "")

	hijack := *c
	hijack.UserID = bob.ID
	hijack.Name = "Stolen"
	err := s.UpdateCollection(ctx, &hijack)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user update: err = %v, want ErrNotFound", err)
	}

	got, _ := s.GetCollection(ctx, c.ID, alice.ID)
	if got.Name != "Private" {
		t.Errorf("name = %q, row should be unchanged", got.Name)
	}
}

func TestDeleteCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	c := mustCreateCollection(t, s, u.ID, "Temp", "")

	if err := s.DeleteCollection(ctx, c.ID, u.ID); err != nil {
		t.Fatalf("delete collection: %v", err)
	}

	_, err := s.GetCollection(ctx, c.ID, u.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestCountCollectionChildrenAndBookmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	parent := mustCreateCollection(t, s, u.ID, "Parent", "")
	mustCreateCollection(t, s, u.ID, "Child", parent.ID)
	mustCreateBookmark(t, s, u.ID, parent.ID, "article")

	children, err := s.CountCollectionChildren(ctx, parent.ID, u.ID)
	if err != nil {
		t.Fatalf("count children: %v", err)
	}
	if children != 1 {
		t.Errorf("children = %d, want 1", children)
	}

	bms, err := s.CountCollectionBookmarks(ctx, parent.ID, u.ID)
	if err != nil {
		t.Fatalf("count bookmarks: %v", err)
	}
	if bms != 1 {
		t.Errorf("bookmarks = %d, want 1", bms)
	}
}
