package service

import (
	"context"
	"testing"

	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupTestUser(t *testing.T, authService *AuthService) string {
	t.Helper()
	resp, err := authService.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	return resp.User.ID
}

func TestCollectionService_CreateNested(t *testing.T) {
	authService, collectionService := setupAuthTest(t)
	ctx := context.Background()
	userID := signupTestUser(t, authService)

	parent, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "Work"})
	require.NoError(t, err)

	child, err := collectionService.Create(ctx, userID, CreateCollectionRequest{
		Name:     "Projects",
		ParentID: parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)

	// Unknown parent is rejected.
	_, err = collectionService.Create(ctx, userID, CreateCollectionRequest{
		Name:     "Bad",
		ParentID: "coll-missing",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCollectionService_ListReturnsTree(t *testing.T) {
	authService, collectionService := setupAuthTest(t)
	ctx := context.Background()
	userID := signupTestUser(t, authService)

	parent, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "Work"})
	require.NoError(t, err)
	_, err = collectionService.Create(ctx, userID, CreateCollectionRequest{
		Name:     "Projects",
		ParentID: parent.ID,
	})
	require.NoError(t, err)

	roots, err := collectionService.List(ctx, userID)
	require.NoError(t, err)

	// Default "Unsorted" plus "Work"; "Projects" nests under "Work".
	require.Len(t, roots, 2)
	for _, root := range roots {
		if root.ID == parent.ID {
			require.Len(t, root.Children, 1)
			assert.Equal(t, "Projects", root.Children[0].Name)
		}
	}
}

func TestCollectionService_Update_RejectsCycles(t *testing.T) {
	authService, collectionService := setupAuthTest(t)
	ctx := context.Background()
	userID := signupTestUser(t, authService)

	a, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "A"})
	require.NoError(t, err)
	b, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "B", ParentID: a.ID})
	require.NoError(t, err)
	c, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "C", ParentID: b.ID})
	require.NoError(t, err)

	// A under its own grandchild C.
	_, err = collectionService.Update(ctx, a.ID, userID, UpdateCollectionRequest{ParentID: &c.ID})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Self-parenting.
	_, err = collectionService.Update(ctx, a.ID, userID, UpdateCollectionRequest{ParentID: &a.ID})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Moving C to the root is fine.
	root := ""
	updated, err := collectionService.Update(ctx, c.ID, userID, UpdateCollectionRequest{ParentID: &root})
	require.NoError(t, err)
	assert.Empty(t, updated.ParentID)
}

func TestCollectionService_Update_Rename(t *testing.T) {
	authService, collectionService := setupAuthTest(t)
	ctx := context.Background()
	userID := signupTestUser(t, authService)

	coll, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "Old"})
	require.NoError(t, err)

	name := "New"
	updated, err := collectionService.Update(ctx, coll.ID, userID, UpdateCollectionRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
}

func TestCollectionService_Delete_RefusesNonEmpty(t *testing.T) {
	authService, collectionService := setupAuthTest(t)
	ctx := context.Background()
	userID := signupTestUser(t, authService)

	parent, err := collectionService.Create(ctx, userID, CreateCollectionRequest{Name: "Parent"})
	require.NoError(t, err)
	child, err := collectionService.Create(ctx, userID, CreateCollectionRequest{
		Name:     "Child",
		ParentID: parent.ID,
	})
	require.NoError(t, err)

	err = collectionService.Delete(ctx, parent.ID, userID)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	// Empty leaf deletes fine, then the parent does too.
	require.NoError(t, collectionService.Delete(ctx, child.ID, userID))
	require.NoError(t, collectionService.Delete(ctx, parent.ID, userID))

	err = collectionService.Delete(ctx, parent.ID, userID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
