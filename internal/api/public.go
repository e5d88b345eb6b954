package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maisondecor/maison/internal/errors"
	"github.com/maisondecor/maison/internal/log"
)

// PublicClient reaches the same backend as the gateway but carries no
// recovery policy: an authorization failure is returned to the caller
// as-is. Anonymous storefront pages degrade gracefully instead of
// booting the visitor to a login screen, and the session store uses
// this client for login/refresh/logout without recursing into the
// gateway's refresh coordinator.
type PublicClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	tokenFn    TokenFunc
}

// NewPublicClient creates a public client. Pass the same http.Client
// as the gateway so both share the cookie jar holding the refresh
// credential.
func NewPublicClient(baseURL string, httpClient *http.Client, logger *log.Logger) *PublicClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &PublicClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "public_api"),
	}
}

// SetTokenFunc attaches an optional token source. Public endpoints
// accept anonymous calls; when a session exists the token rides along
// so optional-auth endpoints can personalize.
func (p *PublicClient) SetTokenFunc(fn TokenFunc) {
	p.tokenFn = fn
}

// doJSON sends one JSON request. No refresh, no retry, no logout.
func (p *PublicClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.ErrCodeAPIEncodeFailed, "failed to encode request body", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequestFailed, "failed to build request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.tokenFn != nil {
		if token := p.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIUnreachable, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequestFailed, "failed to read response", err)
	}

	return decodeResult(resp.StatusCode, body, out)
}
