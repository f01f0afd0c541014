package dockerhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, pageSize int) *Client {
	t.Helper()
	cfg := config.DockerHubConfig{
		APIBaseURL:     baseURL,
		PageSize:       pageSize,
		TimeoutSeconds: 5,
	}
	client, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	return client
}

type repoPage struct {
	Next    *string      `json:"next"`
	Results []Repository `json:"results"`
}

// pagedRepoHandler serves total fake repositories in pages of pageSize with
// the Hub's body-level next pointer set on every page but the last.
func pagedRepoHandler(total, pageSize int, requests *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		page := 1
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)

		start := (page - 1) * pageSize
		end := start + pageSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}

		body := repoPage{Results: make([]Repository, 0, end-start)}
		for i := start; i < end; i++ {
			body.Results = append(body.Results, Repository{
				Name:      fmt.Sprintf("repo-%03d", i),
				Namespace: "acme",
			})
		}
		if end < total {
			next := fmt.Sprintf("%s?page=%d", r.URL.Path, page+1)
			body.Next = &next
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

func drainRepos(t *testing.T, pages *RepoPages) []Repository {
	t.Helper()
	var all []Repository
	for {
		batch, err := pages.Next(context.Background())
		require.NoError(t, err)
		if batch == nil {
			return all
		}
		all = append(all, batch...)
	}
}

func TestLogin_TokenUsedOnSubsequentRequests(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/users/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds["username"])
		assert.Equal(t, "s3cret", creds["password"])
		_, _ = w.Write([]byte(`{"token":"jwt-abc"}`))
	})
	mux.HandleFunc("/v2/repositories/acme/", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"next":null,"results":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, 100)
	require.NoError(t, client.Login(context.Background(), "alice", "s3cret"))

	_, err := client.Repositories("acme").Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "JWT jwt-abc", gotAuth)
}

func TestLogin_FailureReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Incorrect authentication credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 100)
	err := client.Login(context.Background(), "alice", "wrong")

	require.Error(t, err)
	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestLogin_EmptyTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":""}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 100)
	assert.Error(t, client.Login(context.Background(), "alice", "s3cret"))
}

func TestRepositories_PaginationStopsOnShortPage(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(pagedRepoHandler(7, 3, &requests))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	repos := drainRepos(t, client.Repositories("acme"))

	assert.Len(t, repos, 7)
	assert.Equal(t, int32(3), requests.Load(), "7 items at page size 3 should take exactly 3 requests")
	assert.Equal(t, "repo-000", repos[0].Name)
	assert.Equal(t, "repo-006", repos[6].Name)
}

func TestRepositories_FullFinalPageIssuesNoExtraRequest(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(pagedRepoHandler(6, 3, &requests))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	repos := drainRepos(t, client.Repositories("acme"))

	assert.Len(t, repos, 6)
	assert.Equal(t, int32(2), requests.Load(), "6 items at page size 3 should take exactly 2 requests")
}

func TestRepositories_ErrorSurfacesStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"object not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 100)
	_, err := client.Repositories("ghost").Next(context.Background())

	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestTags_ReturnsNamesAndDigests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/repositories/acme/tool/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"next": null,
			"results": [
				{"name": "latest", "images": [{"digest": "sha256:aaa", "architecture": "amd64"}]},
				{"name": "v1.2.3", "images": [{"digest": "sha256:bbb", "architecture": "amd64"}, {"digest": "sha256:ccc", "architecture": "arm64"}]}
			]
		}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 100)
	tags, err := client.Tags("acme/tool").Next(context.Background())

	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "latest", tags[0].Name)
	require.Len(t, tags[1].Images, 2)
	assert.Equal(t, "sha256:ccc", tags[1].Images[1].Digest)
}

func TestSkipTag(t *testing.T) {
	tests := []struct {
		tag  string
		skip bool
	}{
		{tag: "latest", skip: false},
		{tag: "v1.0.0", skip: false},
		{tag: "sha256-abc.sig", skip: true},
		{tag: "backup.enc", skip: true},
		{tag: "signature", skip: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.skip, SkipTag(tt.tag))
		})
	}
}

func TestNamespaceFromURL(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  string
	}{
		{name: "profile URL", entry: "https://hub.docker.com/u/library", want: "library"},
		{name: "trailing slash", entry: "https://hub.docker.com/u/library/", want: "library"},
		{name: "schemeless", entry: "hub.docker.com/u/library", want: "library"},
		{name: "bare namespace", entry: "library", want: "library"},
		{name: "surrounding whitespace", entry: "  library ", want: "library"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NamespaceFromURL(tt.entry))
		})
	}
}
