package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/router"
	"github.com/sinner-cli/sinner/internal/server"
)

func startServer(t *testing.T, client llm.Client) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.New(router.New(client), nil, "test", nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: "`feat: add login flow` \U0001F389", Provider: "mock", Model: "m"}}
	srv := startServer(t, mock)

	resp, err := NewClient(srv.URL+"/", time.Second).Run(context.Background(), router.Squash, "add login\nadd logout", nil)
	require.NoError(t, err)
	assert.Equal(t, "feat: add login flow", resp.Output)
	assert.Equal(t, "squash", resp.Command)
	assert.Equal(t, []float64{0.5}, mock.Temperatures)
}

func TestRunTypedErrors(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		srv := startServer(t, &llm.MockClient{})
		_, err := NewClient(srv.URL, time.Second).Run(context.Background(), "deploy", "x", nil)

		var uerr *router.UnsupportedCommandError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "deploy", uerr.Command)
		assert.Equal(t, router.Supported(), uerr.Supported)
	})

	t.Run("unsupported with slash", func(t *testing.T) {
		srv := startServer(t, &llm.MockClient{})
		_, err := NewClient(srv.URL, time.Second).Run(context.Background(), "a/b", "x", nil)

		var uerr *router.UnsupportedCommandError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "a/b", uerr.Command)
	})

	t.Run("unavailable", func(t *testing.T) {
		srv := startServer(t, &llm.MockClient{Err: &llm.UnavailableError{Provider: "openai", Endpoint: "http://127.0.0.1:1234/v1"}})
		_, err := NewClient(srv.URL, time.Second).Run(context.Background(), router.Name, "x", nil)

		var uerr *llm.UnavailableError
		assert.ErrorAs(t, err, &uerr)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := startServer(t, &llm.MockClient{Err: &llm.TimeoutError{Provider: "openai", After: 30 * time.Second}})
		_, err := NewClient(srv.URL, time.Second).Run(context.Background(), router.Name, "x", nil)

		var terr *llm.TimeoutError
		assert.ErrorAs(t, err, &terr)
	})

	t.Run("protocol", func(t *testing.T) {
		srv := startServer(t, &llm.MockClient{Err: &llm.ProtocolError{Provider: "openai", StatusCode: 500}})
		_, err := NewClient(srv.URL, time.Second).Run(context.Background(), router.Name, "x", nil)

		var perr *llm.ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 500, perr.StatusCode)
	})
}

func TestServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.Run(context.Background(), router.Name, "x", nil)
	var uerr *llm.UnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, url, uerr.Endpoint)
	assert.False(t, c.Healthy(context.Background()))
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Run(context.Background(), router.Name, "x", nil)
	var perr *llm.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
}

func TestHealthy(t *testing.T) {
	srv := startServer(t, &llm.MockClient{})
	assert.True(t, NewClient(srv.URL, time.Second).Healthy(context.Background()))
}

func TestUnsupportedName(t *testing.T) {
	assert.Equal(t, "deploy", unsupportedName(`unsupported command "deploy" (supported: name)`))
	assert.Equal(t, "plain", unsupportedName("plain"))
}
