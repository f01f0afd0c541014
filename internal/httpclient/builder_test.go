package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	client, err := NewBuilder(zerolog.Nop()).Build()

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, client.Timeout)
}

func TestBuilder_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client, err := NewBuilder(zerolog.Nop()).WithUserAgent("trufflex-test").Build()
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "trufflex-test", gotUA)
}

func TestBuilder_InvalidProxyFails(t *testing.T) {
	_, err := NewBuilder(zerolog.Nop()).WithProxy("://bad").Build()
	assert.Error(t, err)
}

func TestBuilder_HTTP2Toggle(t *testing.T) {
	enabled, err := NewBuilder(zerolog.Nop()).WithHTTP2(true).Build()
	require.NoError(t, err)
	disabled, err := NewBuilder(zerolog.Nop()).WithHTTP2(false).Build()
	require.NoError(t, err)

	enabledBase := enabled.Transport.(*userAgentTransport).base.(*http.Transport)
	assert.Contains(t, enabledBase.TLSNextProto, "h2")

	disabledBase := disabled.Transport.(*userAgentTransport).base.(*http.Transport)
	assert.Empty(t, disabledBase.TLSNextProto)
}

func TestRateLimiter_AllowsBurstThenThrottles(t *testing.T) {
	rl := NewRateLimiter(100, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	// Two waits at 100 rps after the initial burst token.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestRateLimiter_DisabledNeverBlocks(t *testing.T) {
	rl := NewRateLimiter(0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	for i := 0; i < 1000; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
}

func TestRateLimiter_RespectsContextCancellation(t *testing.T) {
	rl := NewRateLimiter(0.1, 1)
	require.NoError(t, rl.Wait(context.Background())) // consume the burst

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx))
}
