package enumerator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/config"
	"github.com/aleister1102/trufflex/internal/credentials"
	"github.com/aleister1102/trufflex/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dockerCreds = credentials.Credentials{DockerUsername: "alice", DockerPassword: "pw"}

// newDockerMux returns a mux pre-wired with a successful Hub login.
func newDockerMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/users/login/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"jwt-test"}`))
	})
	return mux
}

func TestDockerModes_RequireCredentials(t *testing.T) {
	e := newTestEnumerator(t, "http://127.0.0.1:0", "http://127.0.0.1:0", 100,
		credentials.Credentials{}, config.OutputConfig{})

	_, profileErr := e.DockerProfiles(context.Background(), "unused.txt", models.TagPolicyLatest)
	_, repoErr := e.DockerRepoList(context.Background(), "unused.txt", models.TagPolicyLatest)

	for _, err := range []error{profileErr, repoErr} {
		var cfgErr *common.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "docker", cfgErr.Section)
	}
}

func TestDockerProfiles_LoginFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Incorrect authentication credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := newTestEnumerator(t, srv.URL, srv.URL, 100, dockerCreds, config.OutputConfig{})

	_, err := e.DockerProfiles(context.Background(), writeListFile(t, "acme"), models.TagPolicyLatest)

	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestDockerProfiles_ExpandsNamespacesToLatestTargets(t *testing.T) {
	mux := newDockerMux()
	mux.HandleFunc("/v2/repositories/acme/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "JWT jwt-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"next":null,"results":[
			{"name":"app","namespace":"acme"},
			{"name":"web","namespace":"acme"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	imagesFile := filepath.Join(t.TempDir(), "image.txt")
	out := config.OutputConfig{ImagesFile: imagesFile}
	e := newTestEnumerator(t, srv.URL, srv.URL, 100, dockerCreds, out)

	path := writeListFile(t, "https://hub.docker.com/u/acme")
	result, err := e.DockerProfiles(context.Background(), path, models.TagPolicyLatest)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/app:latest", "acme/web:latest"}, targetIDs(result.Targets))

	images, err := os.ReadFile(imagesFile)
	require.NoError(t, err)
	assert.Equal(t, "acme/app\nacme/web\n", string(images))
}

func TestDockerProfiles_NamespaceFailureSkipsEntry(t *testing.T) {
	mux := newDockerMux()
	mux.HandleFunc("/v2/repositories/ghost/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"object not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/v2/repositories/acme/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next":null,"results":[{"name":"app","namespace":"acme"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := config.OutputConfig{ImagesFile: filepath.Join(t.TempDir(), "image.txt")}
	e := newTestEnumerator(t, srv.URL, srv.URL, 100, dockerCreds, out)

	path := writeListFile(t, "ghost", "acme")
	result, err := e.DockerProfiles(context.Background(), path, models.TagPolicyLatest)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/app:latest"}, targetIDs(result.Targets))
	assert.Equal(t, []string{"ghost"}, result.Stats.SkippedInputs)
}

func TestDockerRepoList_LatestPolicy(t *testing.T) {
	srv := httptest.NewServer(newDockerMux())
	defer srv.Close()

	imagesFile := filepath.Join(t.TempDir(), "image.txt")
	out := config.OutputConfig{ImagesFile: imagesFile}
	e := newTestEnumerator(t, srv.URL, srv.URL, 100, dockerCreds, out)

	path := writeListFile(t, "acme/app", "library/base")
	result, err := e.DockerRepoList(context.Background(), path, models.TagPolicyLatest)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/app:latest", "library/base:latest"}, targetIDs(result.Targets))

	images, err := os.ReadFile(imagesFile)
	require.NoError(t, err)
	assert.Equal(t, "acme/app\nlibrary/base\n", string(images))
}

func TestDockerRepoList_AllTagsPinsDigests(t *testing.T) {
	mux := newDockerMux()
	mux.HandleFunc("/v2/repositories/acme/app/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next":null,"results":[
			{"name":"latest","images":[{"digest":"sha256:aaa","architecture":"amd64"}]},
			{"name":"v1.0.0","images":[{"digest":"sha256:aaa","architecture":"amd64"}]},
			{"name":"v1.0.0.sig","images":[{"digest":"sha256:sig","architecture":"amd64"}]},
			{"name":"nightly","images":[]}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := config.OutputConfig{ImagesFile: filepath.Join(t.TempDir(), "image.txt")}
	e := newTestEnumerator(t, srv.URL, srv.URL, 100, dockerCreds, out)

	path := writeListFile(t, "acme/app")
	result, err := e.DockerRepoList(context.Background(), path, models.TagPolicyAll)
	require.NoError(t, err)

	// latest and v1.0.0 share a digest and collapse; the .sig artifact is
	// denied; the digest-less tag falls back to its name.
	assert.Equal(t, []string{"acme/app@sha256:aaa", "acme/app:nightly"}, targetIDs(result.Targets))
	assert.Equal(t, 1, result.Stats.Duplicates)
}

func TestDockerRepoList_TagListingFailureSkipsRepo(t *testing.T) {
	mux := newDockerMux()
	mux.HandleFunc("/v2/repositories/broken/app/tags", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/v2/repositories/acme/app/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next":null,"results":[
			{"name":"stable","images":[{"digest":"sha256:bbb","architecture":"amd64"}]}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := config.OutputConfig{ImagesFile: filepath.Join(t.TempDir(), "image.txt")}
	e := newTestEnumerator(t, srv.URL, srv.URL, 100, dockerCreds, out)

	path := writeListFile(t, "broken/app", "acme/app")
	result, err := e.DockerRepoList(context.Background(), path, models.TagPolicyAll)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/app@sha256:bbb"}, targetIDs(result.Targets))
	assert.Equal(t, []string{"broken/app"}, result.Stats.SkippedInputs)
}
