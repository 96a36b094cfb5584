package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

const treeJSON = `{
	"sha": "abc",
	"truncated": false,
	"tree": [
		{"path": "README.md", "type": "blob", "sha": "1", "size": 10},
		{"path": "docs", "type": "tree", "sha": "2"},
		{"path": "docs/104-10004-10143.md", "type": "blob", "sha": "3", "size": 20},
		{"path": "docs/scan.pdf", "type": "blob", "sha": "4", "size": 30},
		{"path": "docs/notes.MD", "type": "blob", "sha": "5", "size": 40},
		{"path": "docs/archive.md", "type": "tree", "sha": "6"}
	]
}`

// newFakeGitHub serves the trees API and raw content from one server.
func newFakeGitHub(t *testing.T, files map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var authHeaders []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/repos/amasad/jfk_files/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(HeaderRateRemaining, "4999")
		w.Header().Set(HeaderRateLimit, "5000")
		_, _ = w.Write([]byte(treeJSON))
	})
	mux.HandleFunc("/raw/amasad/jfk_files/main/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/raw/amasad/jfk_files/main/"):]
		content, ok := files[path]
		if !ok {
			http.Error(w, "404: Not Found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &authHeaders
}

func newTestSource(t *testing.T, server *httptest.Server, token string) *Source {
	t.Helper()
	client, err := NewClient(context.Background(), ClientConfig{
		Token:             token,
		APIBaseURL:        server.URL + "/api/",
		RawBaseURL:        server.URL + "/raw",
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	src, err := NewSource(client, Config{Owner: "amasad", Repo: "jfk_files", Branch: "main"})
	require.NoError(t, err)
	return src
}

func TestNewSource_RequiresConfig(t *testing.T) {
	_, err := NewSource(nil, Config{Owner: "amasad"})

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSource_Name(t *testing.T) {
	server, _ := newFakeGitHub(t, nil)

	assert.Equal(t, "github:amasad/jfk_files@main", newTestSource(t, server, "").Name())
}

func TestSource_List(t *testing.T) {
	server, _ := newFakeGitHub(t, nil)
	src := newTestSource(t, server, "")

	files, err := src.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.CorpusFile{
		{Path: "README.md", URL: "https://github.com/amasad/jfk_files/blob/main/README.md"},
		{Path: "docs/104-10004-10143.md", URL: "https://github.com/amasad/jfk_files/blob/main/docs/104-10004-10143.md"},
	}, files)
	assert.Equal(t, 4999, src.client.RateLimiter().Remaining())
}

func TestSource_List_SendsToken(t *testing.T) {
	server, auth := newFakeGitHub(t, nil)

	_, err := newTestSource(t, server, "ghp_test").List(context.Background())

	require.NoError(t, err)
	require.Len(t, *auth, 1)
	assert.Equal(t, "Bearer ghp_test", (*auth)[0])
}

func TestSource_List_RepoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	_, err := newTestSource(t, server, "").List(context.Background())

	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestSource_Fetch(t *testing.T) {
	server, _ := newFakeGitHub(t, map[string]string{
		"docs/104-10004-10143.md": "# Memo\n\nSubject: Lee Harvey Oswald.",
	})
	src := newTestSource(t, server, "")

	content, err := src.Fetch(context.Background(), domain.CorpusFile{Path: "docs/104-10004-10143.md"})

	require.NoError(t, err)
	assert.Equal(t, "# Memo\n\nSubject: Lee Harvey Oswald.", content)
}

func TestSource_Fetch_NotFound(t *testing.T) {
	server, _ := newFakeGitHub(t, nil)

	_, err := newTestSource(t, server, "").Fetch(context.Background(), domain.CorpusFile{Path: "missing.md"})

	assert.True(t, IsNotFound(err))
}

func TestClient_RawURL_EscapesSegments(t *testing.T) {
	client, err := NewClient(context.Background(), ClientConfig{})
	require.NoError(t, err)

	got := client.RawURL("amasad", "jfk_files", "main", "docs/release 2025/file #1.md")

	assert.Equal(t, "https://raw.githubusercontent.com/amasad/jfk_files/main/docs/release%202025/file%20%231.md", got)
}
