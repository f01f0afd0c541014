package dockerhub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/config"
	"github.com/aleister1102/trufflex/internal/httpclient"

	"github.com/rs/zerolog"
)

// Repository is one repository under a Docker Hub namespace.
type Repository struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// Tag is one tag of a repository together with its per-architecture images.
type Tag struct {
	Name   string     `json:"name"`
	Images []TagImage `json:"images"`
}

// TagImage is one architecture-specific image behind a tag.
type TagImage struct {
	Digest       string `json:"digest"`
	Architecture string `json:"architecture"`
}

// tagDenySuffixes marks signature and encryption artifacts that are not
// scannable container images.
var tagDenySuffixes = []string{".sig", ".enc"}

// SkipTag reports whether a tag name is a non-image artifact that the
// scanner should never be pointed at.
func SkipTag(name string) bool {
	for _, suffix := range tagDenySuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// NamespaceFromURL extracts the namespace from a Docker Hub profile
// reference: "https://hub.docker.com/u/library", "hub.docker.com/u/library"
// and a bare "library" all yield "library".
func NamespaceFromURL(entry string) string {
	trimmed := strings.TrimSpace(entry)
	if idx := strings.LastIndex(trimmed, "/u/"); idx >= 0 {
		return strings.TrimSuffix(trimmed[idx+len("/u/"):], "/")
	}
	return trimmed
}

// Client is a read-only Docker Hub v2 client covering the login, repository
// listing and tag listing endpoints.
type Client struct {
	httpClient *http.Client
	limiter    *httpclient.RateLimiter
	baseURL    string
	token      string
	pageSize   int
	logger     zerolog.Logger
}

// NewClient creates a Docker Hub client. Without a Login call it only sees
// public namespaces.
func NewClient(cfg config.DockerHubConfig, logger zerolog.Logger) (*Client, error) {
	hc, err := httpclient.NewBuilder(logger).
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		WithHTTP2(true).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build Docker Hub HTTP client")
	}

	baseURL := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultDockerHubAPIBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultDockerHubPageSize
	}

	return &Client{
		httpClient: hc,
		limiter:    httpclient.NewRateLimiter(cfg.RequestsPerSecond, 1),
		baseURL:    baseURL,
		pageSize:   pageSize,
		logger:     logger.With().Str("component", "DockerHubClient").Logger(),
	}, nil
}

// Login exchanges the account credentials for a JWT used on subsequent
// listing calls. Private repositories stay invisible without it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return common.WrapError(err, "failed to encode Docker Hub login payload")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	loginURL := c.baseURL + "/v2/users/login/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(payload))
	if err != nil {
		return common.WrapError(err, "failed to create Docker Hub login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.WrapError(err, "Docker Hub login request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return common.NewHTTPErrorWithURL(resp.StatusCode, strings.TrimSpace(string(body)), loginURL)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return common.WrapError(err, "failed to decode Docker Hub login response")
	}
	if loginResp.Token == "" {
		return common.NewError("Docker Hub login returned an empty token")
	}

	c.token = loginResp.Token
	c.logger.Debug().Str("username", username).Msg("Docker Hub login succeeded")
	return nil
}

// Repositories pages through the repositories of a namespace.
func (c *Client) Repositories(namespace string) *RepoPages {
	return &RepoPages{
		client: c,
		path:   "/v2/repositories/" + url.PathEscape(namespace) + "/",
		page:   1,
	}
}

// Tags pages through the tags of a "namespace/repository".
func (c *Client) Tags(repository string) *TagPages {
	return &TagPages{
		client: c,
		path:   "/v2/repositories/" + repository + "/tags",
		page:   1,
	}
}

// RepoPages walks a paginated repository listing one page at a time.
type RepoPages struct {
	client *Client
	path   string
	page   int
	done   bool
}

// Next returns the next page of repositories, or nil once the listing is
// exhausted.
func (p *RepoPages) Next(ctx context.Context) ([]Repository, error) {
	if p.done {
		return nil, nil
	}

	var envelope struct {
		Next    *string      `json:"next"`
		Results []Repository `json:"results"`
	}
	if err := p.client.getPage(ctx, p.path, p.page, &envelope); err != nil {
		p.done = true
		return nil, err
	}

	if len(envelope.Results) < p.client.pageSize || envelope.Next == nil || *envelope.Next == "" {
		p.done = true
	}
	p.page++
	return envelope.Results, nil
}

// TagPages walks a paginated tag listing one page at a time.
type TagPages struct {
	client *Client
	path   string
	page   int
	done   bool
}

// Next returns the next page of tags, or nil once the listing is exhausted.
func (p *TagPages) Next(ctx context.Context) ([]Tag, error) {
	if p.done {
		return nil, nil
	}

	var envelope struct {
		Next    *string `json:"next"`
		Results []Tag   `json:"results"`
	}
	if err := p.client.getPage(ctx, p.path, p.page, &envelope); err != nil {
		p.done = true
		return nil, err
	}

	if len(envelope.Results) < p.client.pageSize || envelope.Next == nil || *envelope.Next == "" {
		p.done = true
	}
	p.page++
	return envelope.Results, nil
}

// getPage fetches one page of a listing. The Hub reports continuation in the
// body's "next" field rather than a Link header.
func (c *Client) getPage(ctx context.Context, path string, page int, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("page_size", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return common.WrapError(err, "failed to create Docker Hub request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "JWT "+c.token)
	}

	c.logger.Debug().Str("url", reqURL).Msg("Fetching Docker Hub listing page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.WrapErrorf(err, "Docker Hub request failed for '%s'", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return common.NewHTTPErrorWithURL(resp.StatusCode, strings.TrimSpace(string(body)), reqURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return common.WrapErrorf(err, "failed to decode Docker Hub response for '%s'", path)
	}
	return nil
}
