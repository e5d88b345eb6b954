// Package api is the HTTP layer between the client and the remote
// store backend. It ships two clients: Client, the privileged gateway
// used by authenticated surfaces, which transparently refreshes an
// expired access token and serializes concurrent refresh attempts; and
// PublicClient, used by anonymous storefront pages and by the session
// store itself, which never forces a logout.
//
// The gateway never imports the session package: it reads the token
// and triggers refresh/logout through callbacks injected at wiring
// time, keeping the network layer free of session business rules.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maisondecor/maison/internal/errors"
	"github.com/maisondecor/maison/internal/log"
)

// TokenFunc returns the current access token, or "" when anonymous.
type TokenFunc func() string

// RefreshFunc performs a token refresh and returns the new token.
type RefreshFunc func(ctx context.Context) (string, error)

// LogoutFunc forces a local logout after a failed refresh.
type LogoutFunc func(ctx context.Context)

// Client is the privileged API gateway with refresh coordination.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu       sync.RWMutex
	tokenFn  TokenFunc
	refresh  RefreshFunc
	logout   LogoutFunc

	queue *refreshQueue
}

// NewClient creates a gateway for the given base URL. The http.Client
// is shared with the public client so both see the same cookie jar;
// the refresh credential travels as an HTTP-only cookie.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "gateway"),
		queue:      newRefreshQueue(),
	}
}

// SetCallbacks wires the gateway to the session layer. Must be called
// before any authenticated request; the bootstrapper does this after
// restoring the persisted session.
func (c *Client) SetCallbacks(token TokenFunc, refresh RefreshFunc, logout LogoutFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenFn = token
	c.refresh = refresh
	c.logout = logout
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokenFn == nil {
		return ""
	}
	return c.tokenFn()
}

func (c *Client) callbacks() (RefreshFunc, LogoutFunc) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refresh, c.logout
}

// request is an outgoing call that can be replayed after a refresh.
// The body is held as bytes so a retry rebuilds an identical request.
type request struct {
	method      string
	path        string
	contentType string
	body        []byte

	// retried marks a request already replayed once. A repeated
	// authorization failure on a retried request propagates instead
	// of triggering another refresh; this is the loop guard.
	retried bool
}

// doJSON sends a JSON request through the refresh-aware pipeline and
// decodes the response body into out (which may be nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	req := &request{method: method, path: path}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.ErrCodeAPIEncodeFailed, "failed to encode request body", err)
		}
		req.body = body
		req.contentType = "application/json"
	}
	return c.send(ctx, req, out)
}

// send runs one request through the pipeline: attach token, detect
// authorization failure, coordinate a single refresh, retry once.
func (c *Client) send(ctx context.Context, req *request, out any) error {
	reqID := uuid.NewString()[:8]
	logger := c.logger.With("request_id", reqID, "method", req.method, "path", req.path)

	status, body, err := c.roundTrip(ctx, req, c.currentToken())
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIUnreachable, "request failed", err)
	}

	if !authFailure(status, body) {
		return decodeResult(status, body, out)
	}

	if req.retried {
		// Second authorization failure after a successful refresh:
		// give up rather than loop.
		logger.Warn("request failed authorization after retry")
		return errors.Wrap(errors.ErrCodeAPIRetryExhausted, "request failed after token refresh", statusError(status, body))
	}

	logger.Debug("authorization failure, entering refresh", "status", status, "queued", c.queue.Pending())

	token, refreshErr := c.awaitRefresh(ctx, logger)
	if refreshErr != nil {
		// The refresh outcome is terminal; the leader has already
		// invoked the logout callback. Surface the original
		// authorization failure to the caller.
		return statusError(status, body)
	}

	req.retried = true
	status, body, err = c.roundTrip(ctx, req, token)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIUnreachable, "retry failed", err)
	}
	if authFailure(status, body) {
		logger.Warn("retried request failed authorization again")
		return errors.Wrap(errors.ErrCodeAPIRetryExhausted, "request failed after token refresh", statusError(status, body))
	}
	return decodeResult(status, body, out)
}

// awaitRefresh guarantees at most one refresh call in flight. The
// leader invokes the injected refresh callback; followers block on the
// queue and observe the same outcome.
func (c *Client) awaitRefresh(ctx context.Context, logger *log.Logger) (string, error) {
	leader, wait := c.queue.Begin()
	if !leader {
		select {
		case res := <-wait:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	refresh, logout := c.callbacks()
	if refresh == nil {
		err := errors.New(errors.ErrCodeAPIRequestFailed, "gateway refresh callback not wired")
		c.queue.Finish("", err)
		return "", err
	}

	token, err := refresh(ctx)
	if err != nil {
		logger.WithError(err).Warn("token refresh failed", "queued", c.queue.Pending())
	} else {
		logger.Debug("token refresh succeeded", "queued", c.queue.Pending())
	}
	c.queue.Finish(token, err)

	// Refresh failure is terminal for the session: force the logout
	// exactly once, from the leader, after the queue has drained.
	if err != nil && logout != nil {
		logout(ctx)
	}
	return token, err
}

// roundTrip performs a single HTTP exchange and reads the full body.
func (c *Client) roundTrip(ctx context.Context, req *request, token string) (int, []byte, error) {
	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reader)
	if err != nil {
		return 0, nil, err
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// authFailure reports whether a response means the access token was
// rejected: a plain 401, or a 403 whose body carries the backend's
// session-expiry marker.
func authFailure(status int, body []byte) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	if status != http.StatusForbidden {
		return false
	}
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return false
	}
	msg := er.text()
	return strings.Contains(msg, "Session expired.") || strings.Contains(msg, "Invalid refresh token.")
}

// statusError turns a non-2xx response into a MaisonError, preferring
// the backend's own message.
func statusError(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.text() != "" {
		return errors.New(errors.ErrCodeAPIBadStatus, fmt.Sprintf("%s (status %d)", er.text(), status))
	}
	return errors.New(errors.ErrCodeAPIBadStatus, fmt.Sprintf("request failed with status %d", status))
}

// decodeResult finishes a settled exchange: non-2xx becomes an error,
// otherwise the body is decoded into out when requested.
func decodeResult(status int, body []byte, out any) error {
	if status < 200 || status >= 300 {
		return statusError(status, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecodeFailed, "failed to decode response", err)
	}
	return nil
}
