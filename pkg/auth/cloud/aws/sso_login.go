package aws

import (
	"context"
	"crypto/sha1" //nolint:gosec // cache keys must match the AWS CLI.
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/samber/lo"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/callback"
	"github.com/serverless/sfauth/pkg/auth/pkce"
	log "github.com/serverless/sfauth/pkg/logger"
)

const (
	// DefaultSSOScope is requested when the sso-session lists no scopes.
	DefaultSSOScope = "sso:account:access"

	ssoErrorPrefix    = "AWS_SSO"
	ssoTool           = "botocore"
	ssoClientType     = "public"
	grantAuthCode     = "authorization_code"
	grantRefresh      = "refresh_token"
	ssoSuccessTitle   = "SSO Login Successful"
	ssoSuccessContent = "<p>You have successfully authenticated with AWS SSO.</p><p>You can close this window and return to the CLI.</p>"
)

var ssoGrantTypes = []string{grantAuthCode, grantRefresh}

// SSOLoginOptions selects the profile or sso-session to log in with.
type SSOLoginOptions struct {
	Profile    string
	SSOSession string
}

// SSOConfig is the SSO configuration resolved from the AWS config file.
type SSOConfig struct {
	StartURL    string
	Region      string
	SessionName string
	Scopes      []string
	Profile     string
}

// SSOLoginResult reports the outcome of an SSO login.
type SSOLoginResult struct {
	SessionName string
	StartURL    string
	TokenFile   string
	ExpiresAt   time.Time
}

// ClientRegistration is the cached SSO OIDC client registration.
type ClientRegistration struct {
	ClientID     string   `json:"clientId"`
	ClientSecret string   `json:"clientSecret"`
	ExpiresAt    string   `json:"expiresAt"`
	Scopes       []string `json:"scopes,omitempty"`
	GrantTypes   []string `json:"grantTypes,omitempty"`
}

// SSOTokenCache is the AWS CLI compatible token cache written to ~/.aws/sso/cache.
type SSOTokenCache struct {
	StartURL              string `json:"startUrl"`
	Region                string `json:"region"`
	AccessToken           string `json:"accessToken"`
	ExpiresAt             string `json:"expiresAt"`
	ClientID              string `json:"clientId"`
	ClientSecret          string `json:"clientSecret"`
	RegistrationExpiresAt string `json:"registrationExpiresAt"`
	RefreshToken          string `json:"refreshToken,omitempty"`
}

// SSOOIDCClientFactory creates an SSO OIDC client for a region.
type SSOOIDCClientFactory func(ctx context.Context, region string) (SSOOIDCAPI, error)

// SSOLogin runs the SSO authorization-code flow with PKCE.
type SSOLogin struct {
	lc        *LoginContext
	newClient SSOOIDCClientFactory
}

// SSOLoginOption configures an SSOLogin.
type SSOLoginOption func(*SSOLogin)

// WithSSOOIDCClientFactory replaces the SDK client constructor.
func WithSSOOIDCClientFactory(f SSOOIDCClientFactory) SSOLoginOption {
	return func(s *SSOLogin) {
		s.newClient = f
	}
}

// NewSSOLogin creates an SSOLogin.
func NewSSOLogin(lc *LoginContext, opts ...SSOLoginOption) *SSOLogin {
	s := &SSOLogin{lc: lc, newClient: defaultSSOOIDCClient}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultSSOOIDCClient(ctx context.Context, region string) (SSOOIDCAPI, error) {
	// Register and CreateToken are unsigned; stray credentials must not break config loading.
	cfg, err := LoadSDKConfig(ctx, SDKOptions{Region: region, Isolated: true})
	if err != nil {
		return nil, err
	}
	return ssooidc.NewFromConfig(cfg), nil
}

// Login signs in to IAM Identity Center and writes the token where the AWS CLI looks for it.
func (s *SSOLogin) Login(ctx context.Context, opts SSOLoginOptions) (*SSOLoginResult, error) {
	if err := s.lc.requireInteractive(errUtils.CodeAWSSSOLoginNonInteractive, "login aws sso"); err != nil {
		return nil, err
	}

	cfg, err := s.ResolveConfig(opts)
	if err != nil {
		return nil, err
	}
	log.Info("Starting SSO login", "target", lo.Ternary(cfg.SessionName != "", cfg.SessionName, cfg.StartURL))

	pair, err := pkce.Generate()
	if err != nil {
		return nil, err
	}
	state := uuid.NewString()

	server, err := s.lc.startCallback(ctx, callback.Options{
		ExpectedState:  state,
		ErrorPrefix:    ssoErrorPrefix,
		SuccessTitle:   ssoSuccessTitle,
		SuccessContent: ssoSuccessContent,
	})
	if err != nil {
		return nil, err
	}
	redirectURI := server.RedirectURI()

	client, err := s.newClient(ctx, cfg.Region)
	if err != nil {
		server.Close()
		return nil, err
	}

	registration, err := s.getOrRegisterClient(ctx, client, cfg, redirectURI)
	if err != nil {
		server.Close()
		return nil, err
	}

	authURL := SSOAuthorizeURL(cfg.Region, registration.ClientID, redirectURI, state, pair.Challenge, cfg.Scopes)
	code, err := s.lc.awaitCode(ctx, server, authURL, "Waiting for SSO login in browser", errUtils.CodeAWSSSOLoginNoCode)
	if err != nil {
		return nil, err
	}

	token, err := client.CreateToken(ctx, &ssooidc.CreateTokenInput{
		GrantType:    aws.String(grantAuthCode),
		ClientId:     aws.String(registration.ClientID),
		ClientSecret: aws.String(registration.ClientSecret),
		RedirectUri:  aws.String(redirectURI),
		CodeVerifier: aws.String(pair.Verifier),
		Code:         aws.String(code),
	})
	if err != nil {
		return nil, errUtils.Coded(errUtils.ErrSSOCreateToken, errUtils.CodeAWSSSOCreateToken,
			"Failed to get SSO token: %s", apiErrorMessage(err))
	}

	result, err := s.saveToken(cfg, registration, token)
	if err != nil {
		return nil, err
	}

	suffix := ""
	if cfg.SessionName != "" {
		suffix = fmt.Sprintf(" (session: %s)", cfg.SessionName)
	}
	s.lc.Prompter.Success(fmt.Sprintf("Successfully logged in to AWS SSO%s.", suffix))
	return result, nil
}

// ResolveConfig reads the SSO settings: explicit sso-session, then the profile's sso_session,
// then the legacy sso_start_url/sso_region on the profile.
func (s *SSOLogin) ResolveConfig(opts SSOLoginOptions) (*SSOConfig, error) {
	store := s.lc.store()
	configPath, err := store.ConfigPath()
	if err != nil {
		return nil, err
	}

	profile := profileOrDefault(opts.Profile)
	profileSection := ProfileSectionName(profile)

	get := func(section, key string) (string, error) {
		value, _, err := store.GetSectionValue(section, key, configPath)
		return strings.TrimSpace(value), err
	}

	session := opts.SSOSession
	if session == "" {
		if session, err = get(profileSection, "sso_session"); err != nil {
			return nil, err
		}
	}

	cfg := &SSOConfig{SessionName: session, Profile: profile}
	if session != "" {
		section := SSOSessionSectionName(session)
		if cfg.StartURL, err = get(section, "sso_start_url"); err != nil {
			return nil, err
		}
		if cfg.Region, err = get(section, "sso_region"); err != nil {
			return nil, err
		}
		rawScopes, err := get(section, "sso_registration_scopes")
		if err != nil {
			return nil, err
		}
		if rawScopes != "" {
			cfg.Scopes = lo.FilterMap(strings.Split(rawScopes, ","), func(scope string, _ int) (string, bool) {
				scope = strings.TrimSpace(scope)
				return scope, scope != ""
			})
		}
	} else {
		if cfg.StartURL, err = get(profileSection, "sso_start_url"); err != nil {
			return nil, err
		}
		if cfg.Region, err = get(profileSection, "sso_region"); err != nil {
			return nil, err
		}
	}

	if cfg.StartURL == "" {
		target := lo.Ternary(session != "", fmt.Sprintf("session %q", session), fmt.Sprintf("profile %q", profile))
		return nil, errUtils.Build(errUtils.Coded(errUtils.ErrSSONotConfigured, errUtils.CodeAWSSSONotConfigured,
			"No SSO configuration found. Please run 'aws configure sso' first to set up SSO for %s.", target)).
			WithContext("profile", profile).
			Err()
	}
	if cfg.Region == "" {
		return nil, errUtils.Coded(errUtils.ErrSSOMissingRegion, errUtils.CodeAWSSSOMissingRegion,
			"Missing sso_region in SSO configuration. Please run 'aws configure sso' to complete setup.")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{DefaultSSOScope}
	}
	return cfg, nil
}

func (s *SSOLogin) getOrRegisterClient(ctx context.Context, client SSOOIDCAPI, cfg *SSOConfig, redirectURI string) (*ClientRegistration, error) {
	dir, err := s.lc.store().SSOCacheDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, RegistrationCacheKey(cfg.StartURL, cfg.Region, cfg.SessionName, cfg.Scopes)+".json")

	var cached ClientRegistration
	found, err := ReadCacheFile(path, &cached)
	if err != nil {
		log.Debug("Failed to load cached registration", "error", err)
	}
	if found && s.validRegistration(&cached) {
		log.Info("Using cached client registration")
		return &cached, nil
	}

	log.Info("Registering new SSO OIDC client")
	out, err := client.RegisterClient(ctx, &ssooidc.RegisterClientInput{
		ClientName:   aws.String(ssoClientName(cfg.SessionName, s.lc.now())),
		ClientType:   aws.String(ssoClientType),
		GrantTypes:   ssoGrantTypes,
		RedirectUris: []string{redirectURIWithoutPort(redirectURI)},
		IssuerUrl:    aws.String(cfg.StartURL),
		Scopes:       cfg.Scopes,
	})
	if err != nil {
		return nil, errUtils.Coded(errUtils.ErrSSORegisterClient, errUtils.CodeAWSSSORegisterClient,
			"Failed to register SSO client: %s", apiErrorMessage(err))
	}

	registration := &ClientRegistration{
		ClientID:     aws.ToString(out.ClientId),
		ClientSecret: aws.ToString(out.ClientSecret),
		ExpiresAt:    formatRegistrationExpiry(time.Unix(out.ClientSecretExpiresAt, 0)),
		Scopes:       cfg.Scopes,
		GrantTypes:   ssoGrantTypes,
	}
	if err := WriteCacheFile(path, registration, PermissionRW); err != nil {
		return nil, err
	}
	return registration, nil
}

// validRegistration accepts registrations that allow the authorization code grant and have not expired.
func (s *SSOLogin) validRegistration(r *ClientRegistration) bool {
	if !lo.Contains(r.GrantTypes, grantAuthCode) {
		log.Debug("Cached registration does not have authorization_code grant")
		return false
	}
	if r.ExpiresAt == "" {
		return false
	}
	expiresAt, err := time.Parse(time.RFC3339, r.ExpiresAt)
	if err != nil || !expiresAt.After(s.lc.now()) {
		log.Debug("Cached registration is expired")
		return false
	}
	return true
}

func (s *SSOLogin) saveToken(cfg *SSOConfig, registration *ClientRegistration, token *ssooidc.CreateTokenOutput) (*SSOLoginResult, error) {
	dir, err := s.lc.store().SSOCacheDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, TokenCacheKey(cfg.StartURL, cfg.SessionName)+".json")

	expiresAt := s.lc.now().Add(time.Duration(token.ExpiresIn) * time.Second).UTC().Truncate(time.Second)
	cache := SSOTokenCache{
		StartURL:              cfg.StartURL,
		Region:                cfg.Region,
		AccessToken:           aws.ToString(token.AccessToken),
		ExpiresAt:             formatExpiry(expiresAt),
		ClientID:              registration.ClientID,
		ClientSecret:          registration.ClientSecret,
		RegistrationExpiresAt: registration.ExpiresAt,
		RefreshToken:          aws.ToString(token.RefreshToken),
	}
	if err := WriteCacheFile(path, cache, PermissionRW); err != nil {
		return nil, err
	}

	return &SSOLoginResult{
		SessionName: cfg.SessionName,
		StartURL:    cfg.StartURL,
		TokenFile:   path,
		ExpiresAt:   expiresAt,
	}, nil
}

// SSOAuthorizeURL builds the OIDC authorize URL. The challenge is appended unpadded.
func SSOAuthorizeURL(region, clientID, redirectURI, state, challenge string, scopes []string) string {
	if len(scopes) == 0 {
		scopes = []string{DefaultSSOScope}
	}
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)
	params.Set("code_challenge_method", "S256")
	params.Set("scopes", strings.Join(scopes, " "))

	return fmt.Sprintf("https://oidc.%s.amazonaws.com/authorize?%s&code_challenge=%s",
		region, params.Encode(), strings.TrimRight(challenge, "="))
}

// RegistrationCacheKey is the sha1 of the registration arguments serialized exactly like
// Python's json.dumps(sort_keys=True), so the AWS CLI and this tool share registrations.
func RegistrationCacheKey(startURL, region, sessionName string, scopes []string) string {
	args := map[string]any{
		"region":       region,
		"scopes":       scopes,
		"session_name": nil,
		"startUrl":     startURL,
		"tool":         ssoTool,
	}
	if sessionName != "" {
		args["session_name"] = sessionName
	}
	sum := sha1.Sum([]byte(pythonJSON(args))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// TokenCacheKey is the sha1 of the session name, or of the start URL for legacy profiles.
func TokenCacheKey(startURL, sessionName string) string {
	input := lo.Ternary(sessionName != "", sessionName, startURL)
	sum := sha1.Sum([]byte(input)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// pythonJSON renders strings, string slices, nil and maps with Python's default separators
// and ASCII-only escaping.
func pythonJSON(v any) string {
	var b strings.Builder
	writePythonJSON(&b, v)
	return b.String()
}

func writePythonJSON(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		writePythonString(b, val)
	case []string:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			writePythonString(b, item)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writePythonString(b, k)
			b.WriteString(": ")
			writePythonJSON(b, val[k])
		}
		b.WriteByte('}')
	default:
		writePythonString(b, fmt.Sprint(val))
	}
}

func writePythonString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r <= 0xffff):
				writeUnicodeEscape(b, r)
			case r > 0xffff:
				hi, low := utf16.EncodeRune(r)
				writeUnicodeEscape(b, hi)
				writeUnicodeEscape(b, low)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	digits := strconv.FormatInt(int64(r), 16)
	b.WriteString(`\u`)
	b.WriteString(strings.Repeat("0", 4-len(digits)))
	b.WriteString(digits)
}

func ssoClientName(sessionName string, now time.Time) string {
	if sessionName != "" {
		return "botocore-client-" + sessionName
	}
	return fmt.Sprintf("botocore-client-%d", now.Unix())
}

// redirectURIWithoutPort registers the loopback URI without the ephemeral port.
func redirectURIWithoutPort(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return redirectURI
	}
	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Hostname(), u.Path)
}

// apiErrorMessage prefers the service's own message over the SDK's wrapped error text.
func apiErrorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			return msg
		}
		return apiErr.ErrorCode()
	}
	return err.Error()
}
