package errors

import "errors"

// Configuration and file errors.
var (
	ErrGetHomeDir              = errors.New("failed to get home directory")
	ErrResolveConfigPath       = errors.New("failed to resolve AWS config file path")
	ErrLoadConfigFile          = errors.New("failed to load config file")
	ErrWriteConfigFile         = errors.New("failed to write config file")
	ErrCreateConfigDir         = errors.New("failed to create config directory")
	ErrReadCacheFile           = errors.New("failed to read cache file")
	ErrWriteCacheFile          = errors.New("failed to write cache file")
	ErrInvalidSectionName      = errors.New("invalid config section name")
	ErrLoadRcFile              = errors.New("failed to load rc file")
	ErrWriteRcFile             = errors.New("failed to write rc file")
	ErrLockRcFile              = errors.New("failed to lock rc file")
	ErrRcMissingField          = errors.New("missing required rc field")
	ErrLoadServiceConfig       = errors.New("failed to load service configuration")
	ErrInvalidConfigValue      = errors.New("invalid configuration value")
	ErrInvalidLogLevel         = errors.New("invalid log level")
	ErrHTTPRequestFailed       = errors.New("HTTP request failed")
	ErrUnexpectedResponse      = errors.New("unexpected response")
	ErrNonInteractive          = errors.New("interactive terminal required")
	ErrPromptCanceled          = errors.New("prompt canceled")
	ErrBrowserOpen             = errors.New("failed to open browser")
	ErrCallbackServerStart     = errors.New("failed to start callback server")
	ErrCallbackServerFailed    = errors.New("callback server failed")
	ErrPKCEGenerate            = errors.New("failed to generate PKCE pair")
	ErrDPoPKeyGenerate         = errors.New("failed to generate DPoP key")
	ErrDPoPSign                = errors.New("failed to sign DPoP proof")
	ErrLoginBroker             = errors.New("login broker failed")
	ErrUnexpectedBrokerMessage = errors.New("unexpected message received during login")
)

// Callback outcome sentinels. Each is paired with a prefixed code such as AWS_LOGIN_TIMEOUT.
var (
	ErrLoginFailed        = errors.New("login failed")
	ErrLoginStateMismatch = errors.New("state mismatch")
	ErrLoginMissingCode   = errors.New("missing authorization code")
	ErrLoginTimeout       = errors.New("login timed out")
	ErrLoginNoCode        = errors.New("failed to get authorization code")
)

// AWS console login errors.
var (
	ErrConsoleTokenExchange = errors.New("token exchange failed")
	ErrInvalidJWT           = errors.New("invalid JWT")
	ErrInvalidSessionARN    = errors.New("could not extract account ID from session ARN")
	ErrInvalidAccessToken   = errors.New("invalid access token format received from AWS")
)

// AWS SSO login errors.
var (
	ErrSSONotConfigured       = errors.New("no SSO configuration found")
	ErrSSOMissingRegion       = errors.New("missing sso_region in SSO configuration")
	ErrSSORegisterClient      = errors.New("failed to register SSO client")
	ErrSSOCreateToken         = errors.New("failed to get SSO token")
	ErrLoadAWSConfig          = errors.New("failed to load AWS SDK configuration")
	ErrSSMParameterNotFound   = errors.New("license key parameter not found")
	ErrCredentialVerification = errors.New("failed to verify AWS credentials")
)

// Identity resolution errors.
var (
	ErrAuthRequired                = errors.New("authentication required")
	ErrAuthFailed                  = errors.New("authentication failed")
	ErrAuthCanceled                = errors.New("authentication canceled")
	ErrAPIUnreachable              = errors.New("unable to reach the Serverless API")
	ErrInvalidCallerIdentity       = errors.New("unable to validate access key")
	ErrOrgMismatch                 = errors.New("key does not belong to the requested org")
	ErrNoOrgMembership             = errors.New("user is not a member of any org")
	ErrNotOrgMember                = errors.New("user is not a member of the org")
	ErrInvalidUserSession          = errors.New("invalid user session")
	ErrMultipleLicenseOrgs         = errors.New("multiple orgs with license keys")
	ErrMissingLicenseKey           = errors.New("no license key for org")
	ErrLicenseKeyDashboardConflict = errors.New("dashboard features are not available with license keys")
	ErrUnableToDetermineAuth       = errors.New("unable to determine authentication method")
	ErrAuthServiceUnavailable      = errors.New("authentication service unavailable")
	ErrDefaultOrgNotFound          = errors.New("default org not found")
	ErrLogoutNonInteractive        = errors.New("unable to logout in non-interactive mode")
)
