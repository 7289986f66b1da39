package document

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestStore creates a RepositoryStore that communicates with a mock HTTP server.
func setupTestStore(t *testing.T, branch string, handler http.Handler) (*RepositoryStore, *httptest.Server) {
	server := httptest.NewServer(handler)

	store, err := NewRepositoryStore(server.Client(), "", "octocat", "octocat", "README.md", branch, "Update README stats")
	require.NoError(t, err)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	store.client.BaseURL = baseURL

	return store, server
}

func TestRepositoryStore_Update(t *testing.T) {
	original := "hello\n<!-- STATS:START -->old<!-- STATS:END -->\n"
	var committed map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/octocat/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "profile", r.URL.Query().Get("ref"))
			fmt.Fprintf(w, `{"type":"file","encoding":"base64","sha":"abc123","path":"README.md","content":%q}`,
				base64.StdEncoding.EncodeToString([]byte(original)))
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&committed))
			fmt.Fprint(w, `{"content":{"sha":"def456"},"commit":{"sha":"c0ffee"}}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	store, server := setupTestStore(t, "profile", mux)
	defer server.Close()

	found, err := Update(context.Background(), store, markers, "new", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, found)

	require.NotNil(t, committed)
	assert.Equal(t, "abc123", committed["sha"])
	assert.Equal(t, "profile", committed["branch"])
	assert.Equal(t, "Update README stats", committed["message"])
	content, err := base64.StdEncoding.DecodeString(committed["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, "hello\n<!-- STATS:START -->new<!-- STATS:END -->\n", string(content))
	assert.Equal(t, "def456", store.sha)
}

func TestRepositoryStore_ReadError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}
	store, server := setupTestStore(t, "", http.HandlerFunc(handler))
	defer server.Close()

	_, err := store.Read(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get README.md from octocat/octocat")
}

func TestRepositoryStore_WriteError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message": "sha does not match"}`)
	}
	store, server := setupTestStore(t, "", http.HandlerFunc(handler))
	defer server.Close()

	err := store.Write(context.Background(), "content")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit README.md to octocat/octocat")
}
