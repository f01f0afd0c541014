package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
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

// Repository is the subset of the GitHub repository object the enumerator
// consumes.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Private  bool   `json:"private"`
	Fork     bool   `json:"fork"`
}

// URL returns the canonical https://github.com/<owner>/<repo> address.
func (r Repository) URL() string {
	if r.HTMLURL != "" {
		return r.HTMLURL
	}
	return "https://github.com/" + r.FullName
}

// Organization is the subset of the GitHub organization object the
// enumerator consumes.
type Organization struct {
	Login string `json:"login"`
}

// Client is a read-only GitHub REST v3 client covering the repository and
// organization listing endpoints.
type Client struct {
	httpClient *http.Client
	limiter    *httpclient.RateLimiter
	baseURL    string
	token      string
	pageSize   int
	logger     zerolog.Logger
}

// NewClient creates a GitHub API client. An empty token limits the client to
// public endpoints.
func NewClient(cfg config.GitHubConfig, token string, logger zerolog.Logger) (*Client, error) {
	hc, err := httpclient.NewBuilder(logger).
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		WithHTTP2(true).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build GitHub HTTP client")
	}

	baseURL := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultGitHubAPIBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultGitHubPageSize
	}

	return &Client{
		httpClient: hc,
		limiter:    httpclient.NewRateLimiter(cfg.RequestsPerSecond, 1),
		baseURL:    baseURL,
		token:      token,
		pageSize:   pageSize,
		logger:     logger.With().Str("component", "GitHubClient").Logger(),
	}, nil
}

// HasToken reports whether the client authenticates its requests.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// OwnRepos pages through the repositories owned by the token's account.
func (c *Client) OwnRepos() *RepoPages {
	q := url.Values{}
	q.Set("type", "owner")
	return &RepoPages{client: c, path: "/user/repos", query: q, page: 1}
}

// UserRepos pages through the public repositories of the given user.
func (c *Client) UserRepos(username string) *RepoPages {
	return &RepoPages{client: c, path: "/users/" + url.PathEscape(username) + "/repos", query: url.Values{}, page: 1}
}

// OrgRepos pages through the repositories of the given organization visible
// to the token.
func (c *Client) OrgRepos(org string) *RepoPages {
	return &RepoPages{client: c, path: "/orgs/" + url.PathEscape(org) + "/repos", query: url.Values{}, page: 1}
}

// OwnOrgs pages through the organizations the token's account belongs to.
func (c *Client) OwnOrgs() *OrgPages {
	return &OrgPages{client: c, path: "/user/orgs", page: 1}
}

// RepoPages walks a paginated repository listing one page at a time, so
// large accounts never require the whole listing in memory at once.
type RepoPages struct {
	client *Client
	path   string
	query  url.Values
	page   int
	done   bool
}

// Next returns the next page of repositories, or nil once the listing is
// exhausted.
func (p *RepoPages) Next(ctx context.Context) ([]Repository, error) {
	if p.done {
		return nil, nil
	}

	var repos []Repository
	hasNext, err := p.client.getPage(ctx, p.path, p.query, p.page, &repos)
	if err != nil {
		p.done = true
		return nil, err
	}

	// A short page is always the last one; a full page continues only while
	// the server advertises a successor, which keeps the request count at
	// exactly one per page the listing actually has.
	if len(repos) < p.client.pageSize || !hasNext {
		p.done = true
	}
	p.page++
	return repos, nil
}

// OrgPages walks a paginated organization listing one page at a time.
type OrgPages struct {
	client *Client
	path   string
	page   int
	done   bool
}

// Next returns the next page of organizations, or nil once the listing is
// exhausted.
func (p *OrgPages) Next(ctx context.Context) ([]Organization, error) {
	if p.done {
		return nil, nil
	}

	var orgs []Organization
	hasNext, err := p.client.getPage(ctx, p.path, nil, p.page, &orgs)
	if err != nil {
		p.done = true
		return nil, err
	}

	if len(orgs) < p.client.pageSize || !hasNext {
		p.done = true
	}
	p.page++
	return orgs, nil
}

// getPage fetches one page of a listing and reports whether the response
// advertised a rel="next" link.
func (c *Client) getPage(ctx context.Context, path string, query url.Values, page int, v interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	q := url.Values{}
	for key, vals := range query {
		q[key] = vals
	}
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))

	reqURL := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, common.WrapError(err, "failed to create GitHub request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	c.logger.Debug().Str("url", reqURL).Msg("Fetching GitHub listing page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, common.WrapErrorf(err, "GitHub request failed for '%s'", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, common.NewHTTPErrorWithURL(resp.StatusCode, strings.TrimSpace(string(body)), reqURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, common.WrapErrorf(err, "failed to decode GitHub response for '%s'", path)
	}
	return hasNextPage(resp), nil
}

// hasNextPage reports whether a Link header advertises a rel="next" page.
// GitHub omits the link on the final page even when that page is full.
func hasNextPage(resp *http.Response) bool {
	for _, header := range resp.Header.Values("Link") {
		for _, link := range strings.Split(header, ",") {
			if strings.Contains(link, `rel="next"`) {
				return true
			}
		}
	}
	return false
}

// UsernameFromProfileURL extracts the account name from a GitHub profile
// reference: a full profile URL, a bare "user" or a "user/" path all yield
// "user". Entries with extra path segments are rejected because they point
// at a repository, not a profile.
func UsernameFromProfileURL(entry string) (string, error) {
	trimmed := strings.TrimSpace(entry)
	if trimmed == "" {
		return "", common.NewValidationError("profile", entry, "empty profile entry")
	}

	candidate := trimmed
	if strings.Contains(trimmed, "://") {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", common.NewValidationError("profile", entry, fmt.Sprintf("unparseable profile URL: %v", err))
		}
		candidate = parsed.Path
	} else if strings.HasPrefix(trimmed, "github.com/") {
		candidate = strings.TrimPrefix(trimmed, "github.com")
	}

	candidate = strings.Trim(candidate, "/")
	if candidate == "" {
		return "", common.NewValidationError("profile", entry, "profile URL has no username path")
	}
	if strings.Contains(candidate, "/") {
		return "", common.NewValidationError("profile", entry, "profile entry contains extra path segments")
	}
	return candidate, nil
}
