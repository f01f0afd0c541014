package httpclient

import "time"

// UserAgent identifies the tool to the APIs it lists from.
const UserAgent = "trufflex"

// Config holds configuration for HTTP clients.
type Config struct {
	Timeout             time.Duration // Request timeout
	UserAgent           string        // User-Agent header
	Proxy               string        // Proxy URL, empty for none
	MaxIdleConns        int           // Maximum idle connections
	MaxIdleConnsPerHost int           // Maximum idle connections per host
	IdleConnTimeout     time.Duration // Idle connection timeout
	TLSHandshakeTimeout time.Duration // TLS handshake timeout
	DialTimeout         time.Duration // Connection dial timeout
	EnableHTTP2         bool          // Enable HTTP/2 support
}

// DefaultConfig returns the default HTTP client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		UserAgent:           UserAgent,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialTimeout:         10 * time.Second,
		EnableHTTP2:         true,
	}
}
