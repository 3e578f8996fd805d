//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=client.go -destination=mock_client.go -package=dashboard

// Package dashboard talks to the Serverless Platform backend: key validation, orgs, access keys,
// user sessions, and the browser login broker.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	errUtils "github.com/serverless/sfauth/errors"
	httpClient "github.com/serverless/sfauth/pkg/http"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/retry"
)

const (
	pathClientData     = "/bff/getClientData"
	pathCallerIdentity = "/core/accessKeysV2/callerIdentity"
	pathOrgs           = "/core/orgs"
	pathAccessKeys     = "/core/accessKeys"
	pathRefreshToken   = "/core/sessions/refreshAccessToken"
	pathCurrentUser    = "/core/users/me"

	versionHeader = "x-serverless-version"
)

// Client is the subset of the backend API used for authentication.
type Client interface {
	// GetClientData validates an access key or license key and returns org and service data.
	GetClientData(ctx context.Context, key string, params ClientDataParams) (*ClientData, error)
	// CallerIdentity validates a license key and returns the org it belongs to.
	CallerIdentity(ctx context.Context, licenseKey string) (*CallerIdentity, error)
	// ListOrgs returns the orgs the user is a member of.
	ListOrgs(ctx context.Context, idToken, userName string) ([]Org, error)
	// CreateAccessKey mints an access key for the user in an org.
	CreateAccessKey(ctx context.Context, idToken string, req AccessKeyRequest) (*AccessKey, error)
	// RefreshAccessToken exchanges a refresh token for new session tokens.
	RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error)
	// GetCurrentUser returns the user owning idToken.
	GetCurrentUser(ctx context.Context, idToken string) (*User, error)
}

// ClientDataParams scopes GetClientData to a service instance. License keys send no parameters.
type ClientDataParams struct {
	ServiceName *string `json:"serviceName,omitempty"`
	Stage       *string `json:"stage,omitempty"`
	Region      *string `json:"region,omitempty"`
	AppName     *string `json:"appName,omitempty"`
}

// CallerIdentity describes who a key belongs to.
type CallerIdentity struct {
	UserID           string `json:"userId,omitempty"`
	UserName         string `json:"userName,omitempty"`
	UserEmail        string `json:"userEmail,omitempty"`
	OrgID            string `json:"orgId"`
	OrgName          string `json:"orgName"`
	AccessKeyV2Label string `json:"accessKeyV2Label,omitempty"`
}

// ClientData is the response of GetClientData.
type ClientData struct {
	Data     ClientDataBody  `json:"data"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ClientDataBody carries the caller identity plus dashboard data for the service.
type ClientDataBody struct {
	CallerIdentity *CallerIdentity   `json:"callerIdentity"`
	Subscription   json.RawMessage   `json:"subscription,omitempty"`
	Notifications  []json.RawMessage `json:"notifications,omitempty"`
	Integrations   json.RawMessage   `json:"integrations,omitempty"`
	Service        *ServiceInfo      `json:"service,omitempty"`
	Provider       json.RawMessage   `json:"provider,omitempty"`
	Parameters     json.RawMessage   `json:"parameters,omitempty"`
}

// ServiceInfo identifies the dashboard app of a service.
type ServiceInfo struct {
	AppUID string `json:"appUid"`
}

// Org is an org membership of a user.
type Org struct {
	OrgUID    string    `json:"orgUid"`
	OrgName   string    `json:"orgName"`
	Role      string    `json:"role"`
	CreatedAt Timestamp `json:"createdAt"`
}

// AccessKeyRequest asks for a new access key.
type AccessKeyRequest struct {
	Title    string `json:"title"`
	OrgName  string `json:"orgName"`
	UserName string `json:"userName"`
}

// AccessKey is a minted access key.
type AccessKey struct {
	UserUID         string `json:"userUid"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// Tokens are user session tokens.
type Tokens struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// User is the profile of a dashboard user.
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
}

// Timestamp holds a creation time sent either as a number or as an ISO 8601 string.
type Timestamp string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	switch result.Type {
	case gjson.String, gjson.Number:
		*t = Timestamp(result.String())
	default:
		*t = ""
	}
	return nil
}

// Before reports whether t is earlier than other.
func (t Timestamp) Before(other Timestamp) bool {
	a, errA := strconv.ParseFloat(string(t), 64)
	b, errB := strconv.ParseFloat(string(other), 64)
	if errA == nil && errB == nil {
		return a < b
	}
	ta, errA := time.Parse(time.RFC3339Nano, string(t))
	tb, errB := time.Parse(time.RFC3339Nano, string(other))
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return string(t) < string(other)
}

// HTTPClient implements Client over HTTPS.
type HTTPClient struct {
	baseURL string
	version string
	client  httpClient.Client
	retry   *retry.Config
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(c httpClient.Client) Option {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithVersion sets the framework version reported to the backend.
func WithVersion(version string) Option {
	return func(h *HTTPClient) {
		h.version = version
	}
}

// WithRetryConfig overrides the retry policy for idempotent calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(h *HTTPClient) {
		h.retry = &cfg
	}
}

// NewHTTPClient returns a client for the backend at baseURL, e.g. https://api.serverless.com.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	defaults := retry.DefaultConfig()
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient.NewDefaultClient(),
		retry:   &defaults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetClientData implements Client.
func (c *HTTPClient) GetClientData(ctx context.Context, key string, params ClientDataParams) (*ClientData, error) {
	var out ClientData
	if err := c.call(ctx, http.MethodPost, pathClientData, key, params, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallerIdentity implements Client.
func (c *HTTPClient) CallerIdentity(ctx context.Context, licenseKey string) (*CallerIdentity, error) {
	var out CallerIdentity
	if err := c.call(ctx, http.MethodGet, pathCallerIdentity, licenseKey, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrgs implements Client.
func (c *HTTPClient) ListOrgs(ctx context.Context, idToken, userName string) ([]Org, error) {
	path := pathOrgs + "?" + url.Values{"userName": {userName}}.Encode()
	var out []Org
	if err := c.call(ctx, http.MethodGet, path, idToken, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccessKey implements Client. It is not retried.
func (c *HTTPClient) CreateAccessKey(ctx context.Context, idToken string, req AccessKeyRequest) (*AccessKey, error) {
	var out AccessKey
	if err := c.call(ctx, http.MethodPost, pathAccessKeys, idToken, req, &out, false); err != nil {
		return nil, err
	}
	if out.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: access key missing from response", errUtils.ErrUnexpectedResponse)
	}
	return &out, nil
}

// RefreshAccessToken implements Client.
func (c *HTTPClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out Tokens
	if err := c.call(ctx, http.MethodPost, pathRefreshToken, "", body, &out, true); err != nil {
		return nil, err
	}
	if out.IDToken == "" {
		return nil, fmt.Errorf("%w: id token missing from refresh response", errUtils.ErrUnexpectedResponse)
	}
	return &out, nil
}

// GetCurrentUser implements Client.
func (c *HTTPClient) GetCurrentUser(ctx context.Context, idToken string) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodGet, pathCurrentUser, idToken, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path, token string, body, out any, retryable bool) error {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if c.version != "" {
		headers[versionHeader] = c.version
	}
	endpoint := c.baseURL + path

	do := func() error {
		return httpClient.DoJSON(ctx, c.client, method, endpoint, headers, body, out)
	}
	log.Trace("Calling the Serverless API", "method", method, "path", path)

	if !retryable {
		return do()
	}
	return retry.WithPredicate(ctx, c.retry, do, retry.RetryOnTemporary)
}

// ErrorMessage extracts the server-provided message from a failed call, falling back to err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *httpClient.StatusError
	if errors.As(err, &se) && gjson.ValidBytes(se.Body) {
		for _, path := range []string{"message", "error.message", "errorMessage"} {
			if msg := gjson.GetBytes(se.Body, path).String(); msg != "" {
				return msg
			}
		}
	}
	return err.Error()
}
