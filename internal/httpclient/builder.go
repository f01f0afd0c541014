package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/trufflex/internal/common"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// Builder builds HTTP clients with a fluent interface.
type Builder struct {
	config Config
	logger zerolog.Logger
}

// NewBuilder creates a new Builder with default configuration.
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: logger,
	}
}

// WithTimeout sets the request timeout.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithUserAgent sets the User-Agent header applied to every request.
func (b *Builder) WithUserAgent(userAgent string) *Builder {
	b.config.UserAgent = userAgent
	return b
}

// WithProxy routes requests through the given proxy URL.
func (b *Builder) WithProxy(proxy string) *Builder {
	b.config.Proxy = proxy
	return b
}

// WithHTTP2 enables or disables HTTP/2 support.
func (b *Builder) WithHTTP2(enabled bool) *Builder {
	b.config.EnableHTTP2 = enabled
	return b
}

// Build creates the configured *http.Client. The returned client injects the
// User-Agent through its transport so callers do not have to remember it.
func (b *Builder) Build() (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        b.config.MaxIdleConns,
		MaxIdleConnsPerHost: b.config.MaxIdleConnsPerHost,
		IdleConnTimeout:     b.config.IdleConnTimeout,
		TLSHandshakeTimeout: b.config.TLSHandshakeTimeout,
		DialContext: (&net.Dialer{
			Timeout: b.config.DialTimeout,
		}).DialContext,
	}

	if b.config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if b.config.Proxy != "" {
		proxyURL, err := url.Parse(b.config.Proxy)
		if err != nil {
			return nil, common.WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		b.logger.Info().Str("proxy", b.config.Proxy).Msg("HTTP client configured with proxy")
	}

	return &http.Client{
		Transport: &userAgentTransport{base: transport, userAgent: b.config.UserAgent},
		Timeout:   b.config.Timeout,
	}, nil
}

// userAgentTransport stamps the configured User-Agent on requests that do
// not already set one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
