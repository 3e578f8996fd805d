package aws

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/callback"
	"github.com/serverless/sfauth/pkg/auth/pkce"
	httpClient "github.com/serverless/sfauth/pkg/http"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

const (
	// SameDeviceClientID identifies the same-device console login client.
	SameDeviceClientID = "arn:aws:signin:::devtools/same-device"

	// DefaultRegion is used when no region is configured anywhere.
	DefaultRegion = "us-east-1"

	consoleErrorPrefix     = "AWS"
	consoleUserAgent       = "aws-cli/2.15.0"
	defaultConsoleLifetime = 900 * time.Second

	consoleSuccessContent = "<p>You have successfully authenticated with AWS.</p><p>You can close this window and return to the CLI.</p>"

	choiceYes = "Yes"
	choiceNo  = "No"
)

// ConsoleLoginOptions selects the profile and region of a console login.
type ConsoleLoginOptions struct {
	Profile string
	Region  string
}

// ConsoleLoginResult reports what a console login did.
type ConsoleLoginResult struct {
	SessionID      string
	AccountID      string
	Profile        string
	CacheFile      string
	ProfileUpdated bool
}

// ConsoleAccessToken is the credential block of a console login cache file.
type ConsoleAccessToken struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
	AccountID       string `json:"accountId"`
	ExpiresAt       string `json:"expiresAt"`
}

// ConsoleTokenCache is the AWS CLI compatible layout of ~/.aws/login/cache/<sha256>.json.
type ConsoleTokenCache struct {
	AccessToken  ConsoleAccessToken `json:"accessToken"`
	TokenType    string             `json:"tokenType,omitempty"`
	ClientID     string             `json:"clientId"`
	RefreshToken string             `json:"refreshToken,omitempty"`
	IDToken      string             `json:"idToken,omitempty"`
	DPoPKey      string             `json:"dpopKey"`
}

type consoleTokenRequest struct {
	GrantType    string `json:"grantType"`
	Code         string `json:"code"`
	ClientID     string `json:"clientId"`
	CodeVerifier string `json:"codeVerifier"`
	RedirectURI  string `json:"redirectUri"`
}

type consoleTokenResponse struct {
	AccessToken  *consoleCredentials `json:"accessToken"`
	TokenType    string              `json:"tokenType"`
	RefreshToken string              `json:"refreshToken"`
	IDToken      string              `json:"idToken"`
	ExpiresIn    int64               `json:"expiresIn"`
}

type consoleCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
}

// ConsoleLogin runs the same-device console sign-in flow.
type ConsoleLogin struct {
	lc *LoginContext
	// signinBase returns the sign-in origin for a region.
	signinBase func(region string) string
}

// ConsoleLoginOption configures a ConsoleLogin.
type ConsoleLoginOption func(*ConsoleLogin)

// WithSigninEndpoint overrides the regional sign-in origin.
func WithSigninEndpoint(fn func(region string) string) ConsoleLoginOption {
	return func(c *ConsoleLogin) {
		c.signinBase = fn
	}
}

// NewConsoleLogin creates a ConsoleLogin.
func NewConsoleLogin(lc *LoginContext, opts ...ConsoleLoginOption) *ConsoleLogin {
	c := &ConsoleLogin{
		lc: lc,
		signinBase: func(region string) string {
			return fmt.Sprintf("https://%s.signin.aws.amazon.com", region)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveLoginRegion returns the region for the sign-in endpoint.
func ResolveLoginRegion(explicit string) string {
	for _, candidate := range []string{explicit, os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION")} {
		if candidate != "" {
			return candidate
		}
	}
	return DefaultRegion
}

// Login signs in through the browser, caches the credentials and points the profile at the new session.
func (c *ConsoleLogin) Login(ctx context.Context, opts ConsoleLoginOptions) (*ConsoleLoginResult, error) {
	if err := c.lc.requireInteractive(errUtils.CodeAWSLoginNonInteractive, "login aws"); err != nil {
		return nil, err
	}

	profile := profileOrDefault(opts.Profile)
	region := ResolveLoginRegion(opts.Region)

	// Only write a region when none was given and the profile has none yet.
	configRegion := opts.Region
	if configRegion == "" {
		existing, err := c.lc.profileValue(profile, "region")
		if err != nil {
			return nil, err
		}
		if existing == "" {
			configRegion = region
		}
	}

	pair, err := pkce.Generate()
	if err != nil {
		return nil, err
	}
	state := uuid.NewString()

	server, err := c.lc.startCallback(ctx, callback.Options{
		ExpectedState:  state,
		ErrorPrefix:    consoleErrorPrefix,
		SuccessContent: consoleSuccessContent,
	})
	if err != nil {
		return nil, err
	}
	redirectURI := server.RedirectURI()

	authURL := c.authorizeURL(region, pair, redirectURI, state)
	log.Debug("Starting console login", logKeyProfile, profile, "region", region)

	code, err := c.lc.awaitCode(ctx, server, authURL, "Waiting for login in browser", errUtils.CodeAWSLoginNoCode)
	if err != nil {
		return nil, err
	}

	tokens, dpopKey, err := c.exchangeToken(ctx, region, code, pair.Verifier, redirectURI)
	if err != nil {
		return nil, err
	}

	sessionID, err := SessionIDFromIDToken(tokens.IDToken)
	if err != nil {
		return nil, err
	}
	cacheFile, accountID, err := c.saveToken(sessionID, tokens, dpopKey)
	if err != nil {
		return nil, err
	}

	result := &ConsoleLoginResult{
		SessionID: sessionID,
		AccountID: accountID,
		Profile:   profile,
		CacheFile: cacheFile,
	}

	update, err := c.confirmOverwrite(ctx, profile, sessionID)
	if err != nil {
		return nil, err
	}
	if !update {
		c.lc.Prompter.Success("Successfully logged in. Profile configuration not updated.")
		return result, nil
	}

	if err := c.updateProfile(profile, sessionID, configRegion); err != nil {
		return nil, err
	}
	result.ProfileUpdated = true
	c.lc.Prompter.Success(fmt.Sprintf("Successfully logged in. Saved session %s to profile %q.", sessionID, profile))
	return result, nil
}

func (c *ConsoleLogin) authorizeURL(region string, pair pkce.Pair, redirectURI, state string) string {
	params := url.Values{}
	params.Set("client_id", SameDeviceClientID)
	params.Set("response_type", "code")
	params.Set("code_challenge", pair.Challenge)
	params.Set("code_challenge_method", pair.Method)
	params.Set("scope", "openid")
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)
	return c.signinBase(region) + "/v1/authorize?" + params.Encode()
}

// exchangeToken trades the code for credentials, proving possession of a fresh DPoP key.
func (c *ConsoleLogin) exchangeToken(ctx context.Context, region, code, verifier, redirectURI string) (*consoleTokenResponse, string, error) {
	tokenURL := c.signinBase(region) + "/v1/token"

	key, err := pkce.NewDPoPKey()
	if err != nil {
		return nil, "", err
	}
	proof, err := pkce.ProofJWT(key, "POST", tokenURL)
	if err != nil {
		return nil, "", err
	}
	keyPEM, err := pkce.EncodePrivateKeyPEM(key)
	if err != nil {
		return nil, "", err
	}

	body, err := json.Marshal(consoleTokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     SameDeviceClientID,
		CodeVerifier: verifier,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", errUtils.ErrConsoleTokenExchange, err)
	}

	data, err := httpClient.Do(ctx, c.lc.HTTPClient, "POST", tokenURL, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   consoleUserAgent,
		"DPoP":         proof,
	})
	if err != nil {
		var se *httpClient.StatusError
		if errors.As(err, &se) {
			return nil, "", errUtils.Coded(errUtils.ErrConsoleTokenExchange, errUtils.CodeAWSLoginTokenExchange,
				"Token exchange failed: %d %s", se.StatusCode, strings.TrimSpace(string(se.Body)))
		}
		return nil, "", errUtils.Build(err).
			WithSentinel(errUtils.ErrConsoleTokenExchange).
			WithCode(errUtils.CodeAWSLoginTokenExchange).
			Err()
	}

	var tokens consoleTokenResponse
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, "", errUtils.Coded(errUtils.ErrConsoleTokenExchange, errUtils.CodeAWSLoginTokenExchange,
			"Token exchange failed: invalid response: %s", err)
	}
	return &tokens, keyPEM, nil
}

// SessionIDFromIDToken returns the sub claim of an unverified id token.
func SessionIDFromIDToken(idToken string) (string, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return "", errUtils.Coded(errUtils.ErrInvalidJWT, errUtils.CodeAWSLoginInvalidJWT, "Invalid JWT")
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", errUtils.Coded(errUtils.ErrInvalidJWT, errUtils.CodeAWSLoginInvalidJWT, "Invalid JWT")
	}
	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", errUtils.Coded(errUtils.ErrInvalidJWT, errUtils.CodeAWSLoginInvalidJWT, "Invalid JWT")
	}
	return claims.Sub, nil
}

// AccountIDFromSessionARN returns field 4 of an ARN such as arn:aws:iam::123456789012:user/name.
func AccountIDFromSessionARN(sessionID string) (string, error) {
	parts := strings.Split(sessionID, ":")
	if len(parts) < 6 {
		return "", errUtils.Coded(errUtils.ErrInvalidSessionARN, errUtils.CodeAWSLoginInvalidARN,
			"Could not extract account ID from session ARN.")
	}
	return parts[4], nil
}

// ConsoleCacheFileName is the cache file name for a session: the hex sha256 of its id.
func ConsoleCacheFileName(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:]) + ".json"
}

func (c *ConsoleLogin) saveToken(sessionID string, tokens *consoleTokenResponse, dpopKey string) (string, string, error) {
	accountID, err := AccountIDFromSessionARN(sessionID)
	if err != nil {
		return "", "", err
	}

	creds := tokens.AccessToken
	if creds == nil || creds.AccessKeyID == "" || creds.SecretAccessKey == "" || creds.SessionToken == "" {
		return "", "", errUtils.Coded(errUtils.ErrInvalidAccessToken, errUtils.CodeAWSLoginInvalidToken,
			"Invalid access token format received from AWS.")
	}

	lifetime := defaultConsoleLifetime
	if tokens.ExpiresIn > 0 {
		lifetime = time.Duration(tokens.ExpiresIn) * time.Second
	}

	cache := ConsoleTokenCache{
		AccessToken: ConsoleAccessToken{
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			SessionToken:    creds.SessionToken,
			AccountID:       accountID,
			ExpiresAt:       formatExpiry(c.lc.now().Add(lifetime)),
		},
		TokenType:    tokens.TokenType,
		ClientID:     SameDeviceClientID,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		DPoPKey:      dpopKey,
	}

	dir, err := c.lc.store().LoginCacheDir()
	if err != nil {
		return "", "", err
	}
	path := filepath.Join(dir, ConsoleCacheFileName(sessionID))
	if err := WriteCacheFile(path, cache, PermissionRW); err != nil {
		return "", "", err
	}

	log.Debug("Cached console login session", logKeyPath, path, "account", accountID,
		"access_key_id", log.MaskSecret(creds.AccessKeyID))
	return path, accountID, nil
}

// confirmOverwrite asks before repointing a profile that already uses a different session.
func (c *ConsoleLogin) confirmOverwrite(ctx context.Context, profile, sessionID string) (bool, error) {
	existing, err := c.lc.profileValue(profile, "login_session")
	if err != nil {
		return false, err
	}
	if existing == "" || existing == sessionID {
		return true, nil
	}

	message := fmt.Sprintf("Profile %s is already configured to use session %s.\nDo you want to overwrite it to use %s instead?",
		profile, existing, sessionID)
	choice, err := c.lc.Prompter.Choose(ctx, message, []prompt.Option{
		{Label: choiceYes, Value: choiceYes},
		{Label: choiceNo, Value: choiceNo},
	})
	if err != nil {
		return false, err
	}
	return choice == choiceYes, nil
}

func (c *ConsoleLogin) updateProfile(profile, sessionID, region string) error {
	configPath, err := c.lc.store().ConfigPath()
	if err != nil {
		return err
	}

	values := map[string]*string{"login_session": &sessionID}
	if region != "" {
		values["region"] = &region
	}
	return c.lc.store().UpsertSection(ProfileSectionName(profile), values, configPath)
}
