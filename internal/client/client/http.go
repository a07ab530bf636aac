package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/document"
)

const (
	HeaderEmail            = "X-TeamDB-Email"
	HeaderToken            = "X-TeamDB-Token"
	HeaderClientModifiedAt = "X-Client-Modified-At"
)

const (
	documentPath = "/api/teamdb"
	healthPath   = "/api/health"
	tokenPath    = "/api/token"

	maxResponseBody = 32 << 20
)

// Credentials are passed through to the server untouched.
type Credentials struct {
	Email string
	Token string
}

// PushResult is the server's answer to an accepted push.
type PushResult struct {
	Message string
	Raw     []byte
}

// HTTPClient talks to the directory server.
type HTTPClient struct {
	baseURL string
	creds   Credentials
	hc      *http.Client
}

func NewHTTPClient(baseURL string, creds Credentials, timeout time.Duration) *HTTPClient {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		hc:      hc,
	}
}

func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.creds.Email != "" {
		req.Header.Set(HeaderEmail, c.creds.Email)
	}
	if c.creds.Token != "" {
		req.Header.Set(HeaderToken, c.creds.Token)
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// serverMessage extracts a human readable message from an error body.
func serverMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		r := gjson.ParseBytes(body)
		for _, k := range []string{"error", "message", "detail"} {
			if v := r.Get(k); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(status)
}

// Fetch downloads the server snapshot. Any known response layout is
// accepted and normalized.
func (c *HTTPClient) Fetch(ctx context.Context) (*document.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, documentPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	status, body, err := c.do(req)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("server has no data: %w", common.ErrorNotFound)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", common.ErrorUnauthorized, serverMessage(status, body))
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, status, serverMessage(status, body))
	}

	doc, _, err := document.ParseServerResponse(body)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Push uploads the entry's snapshot. Unless force is set the entry's
// modification time is sent as a precondition and a 412 answer yields
// ErrConflict. Every other failure is a *SaveError.
func (c *HTTPClient) Push(ctx context.Context, entry *models.LocalEntry, force bool) (*PushResult, error) {
	if entry == nil || entry.Data == nil {
		return nil, &SaveError{Message: "nothing to push"}
	}
	body, err := entry.Data.JSON()
	if err != nil {
		return nil, &SaveError{Message: err.Error()}
	}

	req, err := c.newRequest(ctx, http.MethodPut, documentPath, body)
	if err != nil {
		return nil, &SaveError{Message: err.Error()}
	}
	if !force && entry.ModifiedAt != "" {
		req.Header.Set(HeaderClientModifiedAt, entry.ModifiedAt)
	}

	status, respBody, err := c.do(req)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			msg = "request timed out"
		}
		return nil, &SaveError{Message: msg}
	}
	if status == http.StatusPreconditionFailed {
		return nil, ErrConflict
	}
	if status < 200 || status > 299 {
		return nil, &SaveError{Status: status, Message: serverMessage(status, respBody)}
	}

	res := &PushResult{Raw: respBody, Message: "saved"}
	if m := gjson.GetBytes(respBody, "message"); m.Exists() {
		res.Message = m.String()
	}
	return res, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Ping probes the health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	status, body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if status != http.StatusOK || gjson.GetBytes(body, "status").String() != "ok" {
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, status)
	}
	return nil
}

// RequestToken asks the server to issue a token for email. The server only
// answers callers on its own host.
func (c *HTTPClient) RequestToken(ctx context.Context, email string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, tokenPath, body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	status, respBody, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("token request failed (HTTP %d): %s", status, serverMessage(status, respBody))
	}
	tok := gjson.GetBytes(respBody, "token").String()
	if tok == "" {
		return "", fmt.Errorf("%w: token missing from response", common.ErrMalformedInput)
	}
	return tok, nil
}
