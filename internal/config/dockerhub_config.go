package config

// Docker Hub API defaults.
const (
	DefaultDockerHubAPIBaseURL = "https://hub.docker.com"
	DefaultDockerHubPageSize   = 100
)

// DockerHubConfig holds settings for the Docker Hub listing client.
type DockerHubConfig struct {
	APIBaseURL        string  `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty" validate:"omitempty,url"`
	PageSize          int     `json:"page_size,omitempty" yaml:"page_size,omitempty" validate:"omitempty,min=1,max=100"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"omitempty,gt=0"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultDockerHubConfig creates a new DockerHubConfig with default values
func NewDefaultDockerHubConfig() DockerHubConfig {
	return DockerHubConfig{
		APIBaseURL:        DefaultDockerHubAPIBaseURL,
		PageSize:          DefaultDockerHubPageSize,
		RequestsPerSecond: 2,
		TimeoutSeconds:    30,
	}
}
