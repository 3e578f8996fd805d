//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=client.go -destination=mock_client_test.go -package=http

package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	errUtils "github.com/serverless/sfauth/errors"
)

const defaultTimeout = 30 * time.Second

// Client defines the interface for making HTTP requests.
// This interface allows for easy mocking in tests.
type Client interface {
	// Do performs an HTTP request and returns the response.
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption is a functional option for configuring the DefaultClient.
type ClientOption func(*DefaultClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *DefaultClient) {
		c.client.Timeout = timeout
	}
}

// WithTransport sets a custom HTTP transport.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *DefaultClient) {
		c.client.Transport = transport
	}
}

// WithHeaders adds static headers to every request that does not already set them.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *DefaultClient) {
		if len(headers) == 0 {
			return
		}
		c.client.Transport = &HeaderTransport{Base: c.client.Transport, Headers: headers}
	}
}

// DefaultClient is the default HTTP client implementation.
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient creates a new DefaultClient with optional configuration.
// The base transport honors proxy variables and the HTTPS_CA / HTTPS_CAFILE bundles.
func NewDefaultClient(opts ...ClientOption) *DefaultClient {
	client := &DefaultClient{
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: baseTransport(),
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do implements Client.Do.
func (c *DefaultClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// HeaderTransport wraps a RoundTripper and sets default headers.
type HeaderTransport struct {
	Base    http.RoundTripper
	Headers map[string]string
}

// RoundTrip implements http.RoundTripper interface.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func baseTransport() http.RoundTripper {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment

	pool, ok := caBundleFromEnv()
	if ok {
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}
	return transport
}

// caBundleFromEnv builds a cert pool from HTTPS_CA (inline PEM, comma separated) and
// HTTPS_CAFILE (comma separated paths). Unreadable entries are skipped.
func caBundleFromEnv() (*x509.CertPool, bool) {
	inline := os.Getenv("HTTPS_CA")
	files := os.Getenv("HTTPS_CAFILE")
	if inline == "" && files == "" {
		return nil, false
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}

	added := false
	for _, pem := range strings.Split(inline, ",") {
		if pool.AppendCertsFromPEM([]byte(strings.TrimSpace(pem))) {
			added = true
		}
	}
	for _, path := range strings.Split(files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if pool.AppendCertsFromPEM(data) {
			added = true
		}
	}
	return pool, added
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", errUtils.ErrHTTPRequestFailed, e.Status)
}

// Unwrap lets errors.Is match ErrHTTPRequestFailed.
func (e *StatusError) Unwrap() error {
	return errUtils.ErrHTTPRequestFailed
}

// Temporary reports whether the status is a server-side failure worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// StatusCode returns the HTTP status carried by err, or 0 for transport failures.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Get performs an HTTP GET request with context using the provided client.
func Get(ctx context.Context, url string, client Client) ([]byte, error) {
	return Do(ctx, client, http.MethodGet, url, nil, nil)
}

// DoJSON sends body as JSON and decodes a 2xx JSON response into out (when non-nil).
func DoJSON(ctx context.Context, client Client, method, url string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %w", errUtils.ErrHTTPRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}

	all := map[string]string{"Accept": "application/json"}
	if body != nil {
		all["Content-Type"] = "application/json"
	}
	for k, v := range headers {
		all[k] = v
	}

	data, err := Do(ctx, client, method, url, reader, all)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", errUtils.ErrUnexpectedResponse, err)
	}
	return nil
}

// Do sends a request and returns the body of a 2xx response. Other statuses yield a *StatusError.
func Do(ctx context.Context, client Client, method, url string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", errors.Join(errUtils.ErrHTTPRequestFailed, err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", errors.Join(errUtils.ErrHTTPRequestFailed, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", errors.Join(errUtils.ErrHTTPRequestFailed, err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}
	}

	return data, nil
}
