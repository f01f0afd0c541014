package config

// GitHub API defaults. The rate sits well under the authenticated
// 5000 req/h quota.
const (
	DefaultGitHubAPIBaseURL = "https://api.github.com"
	DefaultGitHubPageSize   = 100
)

// GitHubConfig holds settings for the GitHub repository listing client.
type GitHubConfig struct {
	APIBaseURL        string  `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty" validate:"omitempty,url"`
	PageSize          int     `json:"page_size,omitempty" yaml:"page_size,omitempty" validate:"omitempty,min=1,max=100"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"omitempty,gt=0"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultGitHubConfig creates a new GitHubConfig with default values
func NewDefaultGitHubConfig() GitHubConfig {
	return GitHubConfig{
		APIBaseURL:        DefaultGitHubAPIBaseURL,
		PageSize:          DefaultGitHubPageSize,
		RequestsPerSecond: 1.25,
		TimeoutSeconds:    30,
	}
}
