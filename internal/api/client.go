// Package api is the HTTP client for the MiniSocial core backend. Every
// request reads the current credential through a provider function and
// attaches it as a bearer token; the client itself holds no session state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/miin000/minisocial-admin/internal/metrics"
)

const httpCallTimeout = 10 * time.Second

// CredentialProvider returns the bearer credential for the current request,
// or "" when the caller is unauthenticated. It is consulted on every call
// so a login or logout between requests is always picked up.
type CredentialProvider func(ctx context.Context) string

// Client dispatches requests to the core backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	credential CredentialProvider
}

// NewClient creates a backend client. The credential provider is an
// explicit constructor parameter so the client has no dependency on any
// particular session implementation.
func NewClient(baseURL string, credential CredentialProvider) *Client {
	if credential == nil {
		credential = func(context.Context) string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: httpCallTimeout},
		credential: credential,
	}
}

// Error is a non-2xx response from the backend, carrying the
// server-supplied message when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// IsUnauthorized reports whether err is a backend 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// do executes a JSON request against the backend. body and out may be nil.
// The endpoint name labels the call in metrics only; errors propagate
// unchanged to the caller, without retries.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, endpoint, out)
}

// send attaches the credential, executes the request, and decodes the
// response.
func (c *Client) send(req *http.Request, endpoint string, out any) error {
	if token := c.credential(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to execute %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return decodeError(resp)
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, "success").Inc()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// decodeError extracts the server-supplied message from an error response.
// A missing or malformed body degrades to the bare status.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

// upload executes a multipart file request against the backend.
func (c *Client) upload(ctx context.Context, endpoint, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create %s form file: %w", endpoint, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s payload: %w", endpoint, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s form: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req, endpoint, out)
}
