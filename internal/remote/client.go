// Package remote runs commands through a running `sinner serve` instead of
// calling the model directly. Errors come back as the same typed errors a
// local run would produce.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/router"
	"github.com/sinner-cli/sinner/internal/server"
)

const (
	provider = "sinner"
	// slack on top of the server's own inference timeout
	timeoutSlack = 5 * time.Second
)

// Client talks to the sinner server.
type Client struct {
	http      *http.Client
	serverURL string
	timeout   time.Duration
}

// NewClient creates a client for serverURL. inferenceTimeout is the
// server's model timeout; the client waits a little longer than that.
func NewClient(serverURL string, inferenceTimeout time.Duration) *Client {
	timeout := inferenceTimeout + timeoutSlack
	return &Client{
		http:      &http.Client{Timeout: timeout},
		serverURL: strings.TrimRight(serverURL, "/"),
		timeout:   timeout,
	}
}

// URL returns the server base URL.
func (c *Client) URL() string { return c.serverURL }

// Run executes command on the server.
func (c *Client) Run(ctx context.Context, command router.Command, input string, opts router.Options) (*server.RunResponse, error) {
	body, err := json.Marshal(server.RunRequest{Input: input, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	path := "/api/run/" + url.PathEscape(string(command))
	status, data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeError(status, data)
	}

	var resp server.RunResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &llm.ProtocolError{Provider: provider, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return &resp, nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	status, _, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	return err == nil && status == http.StatusOK
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, llm.Classify(provider, c.serverURL, c.timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, llm.Classify(provider, c.serverURL, c.timeout, fmt.Errorf("read response %s: %w", path, err))
	}
	return resp.StatusCode, data, nil
}

// decodeError rebuilds the typed error the server reported.
func decodeError(status int, data []byte) error {
	var body server.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Kind == "" {
		return &llm.ProtocolError{
			Provider:   provider,
			StatusCode: status,
			Err:        fmt.Errorf("%s", bytes.TrimSpace(data)),
		}
	}

	cause := fmt.Errorf("%s", body.Error)
	switch body.Kind {
	case server.KindUnsupported:
		return &router.UnsupportedCommandError{Command: unsupportedName(body.Error), Supported: body.Supported}
	case server.KindUnavailable:
		return &llm.UnavailableError{Provider: provider, Endpoint: "upstream model", Err: cause}
	case server.KindTimeout:
		return &llm.TimeoutError{Provider: provider, Err: cause}
	case server.KindProtocol:
		return &llm.ProtocolError{Provider: provider, StatusCode: body.StatusCode, Err: cause}
	default:
		return fmt.Errorf("server status %d: %s", status, body.Error)
	}
}

// unsupportedName pulls the quoted command back out of the server's message.
func unsupportedName(msg string) string {
	start := strings.IndexByte(msg, '"')
	if start < 0 {
		return msg
	}
	end := strings.IndexByte(msg[start+1:], '"')
	if end < 0 {
		return msg
	}
	return msg[start+1 : start+1+end]
}
