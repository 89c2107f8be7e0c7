package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarks_CRUD(t *testing.T) {
	server := setupTestServer(t)
	data := signupUser(t, server, "alice", "alice@example.com")
	token := data.AccessToken

	// Create.
	rec := doJSON(t, server, http.MethodPost, "/api/v1/bookmarks/", token, map[string]any{
		"title": "Go Blog",
		"url":   "https://go.dev/blog",
		"type":  "link",
		"tags":  []string{"go", "reading"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeAs[domain.Bookmark](t, rec).Data
	assert.Equal(t, "Go Blog", created.Title)
	assert.Equal(t, []string{"go", "reading"}, created.Tags)

	// Get.
	rec = doJSON(t, server, http.MethodGet, "/api/v1/bookmarks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Partial update.
	rec = doJSON(t, server, http.MethodPatch, "/api/v1/bookmarks/"+created.ID, token, map[string]any{
		"favorite": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeAs[domain.Bookmark](t, rec).Data
	assert.True(t, updated.Favorite)
	assert.Equal(t, "Go Blog", updated.Title)

	// Type is patchable between non-media types.
	rec = doJSON(t, server, http.MethodPatch, "/api/v1/bookmarks/"+created.ID, token, map[string]any{
		"type": "text",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.TypeText, decodeAs[domain.Bookmark](t, rec).Data.Type)

	// A patch with no fields is an error, not a silent no-op.
	rec = doJSON(t, server, http.MethodPatch, "/api/v1/bookmarks/"+created.ID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// List with filter.
	rec = doJSON(t, server, http.MethodGet, "/api/v1/bookmarks/?favorite=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeAs[[]*domain.Bookmark](t, rec).Data
	require.Len(t, list, 1)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/bookmarks/?tag=go", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]*domain.Bookmark](t, rec).Data, 1)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/bookmarks/?search=blog", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]*domain.Bookmark](t, rec).Data, 1)

	// Tags endpoint.
	rec = doJSON(t, server, http.MethodGet, "/api/v1/tags", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decodeAs[[]*domain.Tag](t, rec).Data
	assert.Len(t, tags, 2)

	// Delete.
	rec = doJSON(t, server, http.MethodDelete, "/api/v1/bookmarks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, server, http.MethodGet, "/api/v1/bookmarks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookmarks_InvalidType(t *testing.T) {
	server := setupTestServer(t)
	data := signupUser(t, server, "alice", "alice@example.com")

	rec := doJSON(t, server, http.MethodPost, "/api/v1/bookmarks/", data.AccessToken, map[string]any{
		"title": "Nope",
		"type":  "carrier-pigeon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// uploadBookmark posts a multipart audio bookmark and returns the response.
func uploadBookmark(t *testing.T, server *Server, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("type", "audio"))
	require.NoError(t, mw.WriteField("tags", "podcast, listen-later"))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookmarks/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// Minimal MPEG frame header padded with zeros.
func audioFixture() []byte {
	return append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 256)...)
}

func TestBookmarks_MediaUploadAndServe(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "alice@example.com")

	rec := uploadBookmark(t, server, alice.AccessToken, "episode.mp3", audioFixture())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeAs[domain.Bookmark](t, rec).Data
	assert.Equal(t, domain.TypeAudio, created.Type)
	assert.Equal(t, "episode.mp3", created.Title)
	assert.Equal(t, []string{"listen-later", "podcast"}, created.Tags)
	require.NotEmpty(t, created.Content)

	// The uploader can stream their file back.
	rec = doJSON(t, server, http.MethodGet, "/api/v1/media/"+created.Content, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneYear, rec.Header().Get("Cache-Control"))
	assert.Equal(t, audioFixture(), rec.Body.Bytes())

	// Range requests are honored.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/"+created.Content, nil)
	req.Header.Set("Authorization", "Bearer "+alice.AccessToken)
	req.Header.Set("Range", "bytes=0-3")
	rangeRec := httptest.NewRecorder()
	server.ServeHTTP(rangeRec, req)
	assert.Equal(t, http.StatusPartialContent, rangeRec.Code)
	assert.Equal(t, audioFixture()[:4], rangeRec.Body.Bytes())

	// Other users are refused.
	bob := signupUser(t, server, "bob", "bob@example.com")
	rec = doJSON(t, server, http.MethodGet, "/api/v1/media/"+created.Content, bob.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Once the bookmark is deleted the file is no longer reachable.
	rec = doJSON(t, server, http.MethodDelete, "/api/v1/bookmarks/"+created.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = doJSON(t, server, http.MethodGet, "/api/v1/media/"+created.Content, alice.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookmarks_MediaUploadRejectsBadExtension(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "alice@example.com")

	rec := uploadBookmark(t, server, alice.AccessToken, "evil.exe", []byte("MZ..."))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookmarks_MediaRequiresUpload(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "alice@example.com")

	rec := doJSON(t, server, http.MethodPost, "/api/v1/bookmarks/", alice.AccessToken, map[string]any{
		"type": "video",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
