package api

import (
	"net/http"
	"testing"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollections_CRUD(t *testing.T) {
	server := setupTestServer(t)
	data := signupUser(t, server, "alice", "alice@example.com")
	token := data.AccessToken

	// Create.
	rec := doJSON(t, server, http.MethodPost, "/api/v1/collections/", token, map[string]any{
		"name": "Work",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeAs[domain.Collection](t, rec).Data
	assert.Equal(t, "Work", created.Name)

	// Nested create.
	rec = doJSON(t, server, http.MethodPost, "/api/v1/collections/", token, map[string]any{
		"name":      "Projects",
		"parent_id": created.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	child := decodeAs[domain.Collection](t, rec).Data

	// List returns trees: default "Unsorted" plus "Work" at the root.
	rec = doJSON(t, server, http.MethodGet, "/api/v1/collections/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roots := decodeAs[[]*domain.Collection](t, rec).Data
	require.Len(t, roots, 2)

	// Get.
	rec = doJSON(t, server, http.MethodGet, "/api/v1/collections/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Rename.
	rec = doJSON(t, server, http.MethodPatch, "/api/v1/collections/"+created.ID, token, map[string]any{
		"name": "Work stuff",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Work stuff", decodeAs[domain.Collection](t, rec).Data.Name)

	// Deleting a parent with children conflicts.
	rec = doJSON(t, server, http.MethodDelete, "/api/v1/collections/"+created.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Leaf first, then parent.
	rec = doJSON(t, server, http.MethodDelete, "/api/v1/collections/"+child.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, server, http.MethodDelete, "/api/v1/collections/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCollections_CycleRejected(t *testing.T) {
	server := setupTestServer(t)
	data := signupUser(t, server, "alice", "alice@example.com")
	token := data.AccessToken

	rec := doJSON(t, server, http.MethodPost, "/api/v1/collections/", token, map[string]any{"name": "A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	a := decodeAs[domain.Collection](t, rec).Data

	rec = doJSON(t, server, http.MethodPost, "/api/v1/collections/", token, map[string]any{
		"name": "B", "parent_id": a.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decodeAs[domain.Collection](t, rec).Data

	rec = doJSON(t, server, http.MethodPatch, "/api/v1/collections/"+a.ID, token, map[string]any{
		"parent_id": b.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollections_IsolatedPerUser(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "alice@example.com")
	bob := signupUser(t, server, "bob", "bob@example.com")

	rec := doJSON(t, server, http.MethodPost, "/api/v1/collections/", alice.AccessToken, map[string]any{
		"name": "Private",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeAs[domain.Collection](t, rec).Data

	rec = doJSON(t, server, http.MethodGet, "/api/v1/collections/"+created.ID, bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/collections/"+created.ID, bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
