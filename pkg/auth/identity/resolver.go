package identity

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/rc"
	"github.com/serverless/sfauth/pkg/browser"
	"github.com/serverless/sfauth/pkg/config"
	"github.com/serverless/sfauth/pkg/dashboard"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

const (
	defaultAuthenticateMessage = "Serverless Framework V4 CLI is free for developers and organizations making less than $2 million annually, but requires an account or a license key.\n\nPlease login/register or enter your license key:"
	signInRequiredMessage      = `You must sign in or use a license key with Serverless Framework V.4 and later versions. Please use "serverless login".`
)

// LicenseKeySource fetches a license key provisioned in the cloud account.
type LicenseKeySource interface {
	Fetch(ctx context.Context, region, profile string) (string, error)
}

// Resolver resolves the identity of the current invocation.
type Resolver struct {
	store       *rc.Store
	client      dashboard.Client
	broker      dashboard.LoginBroker
	prompter    prompt.Prompter
	opener      browser.Opener
	licenseKeys LicenseKeySource
	settings    *config.Settings
	out         io.Writer
	now         func() time.Time
	sleep       func(time.Duration)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLoginBroker sets the broker used for browser logins.
func WithLoginBroker(b dashboard.LoginBroker) Option {
	return func(r *Resolver) {
		r.broker = b
	}
}

// WithBrowser sets the browser opener.
func WithBrowser(o browser.Opener) Option {
	return func(r *Resolver) {
		r.opener = o
	}
}

// WithLicenseKeySource sets where license keys are bootstrapped from when nothing else is configured.
func WithLicenseKeySource(s LicenseKeySource) Option {
	return func(r *Resolver) {
		r.licenseKeys = s
	}
}

// WithSettings sets the platform settings.
func WithSettings(s *config.Settings) Option {
	return func(r *Resolver) {
		r.settings = s
	}
}

// WithOutput sets where fallback URLs are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Resolver) {
		r.out = w
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithSleep replaces time.Sleep.
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Resolver) {
		r.sleep = sleep
	}
}

// NewResolver returns a Resolver backed by the rc store, the dashboard client and the prompter.
func NewResolver(store *rc.Store, client dashboard.Client, prompter prompt.Prompter, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		client:   client,
		prompter: prompter,
		opener:   browser.NewSystemOpener(),
		settings: &config.Settings{
			PlatformStage: config.StageProd,
			RCBaseName:    "serverless",
			DashboardURL:  "https://app.serverless.com",
		},
		out:   os.Stderr,
		now:   time.Now,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAuthenticatedData runs the resolution branches in order and returns the first match.
func (r *Resolver) GetAuthenticatedData(ctx context.Context, req Request) (*AuthenticatedData, error) {
	if key := config.AccessKeyV1FromEnv(); key != "" {
		req.AccessKeyV1 = &key
	}
	if key := config.AccessKeyV2FromEnv(); key != "" {
		req.AccessKeyV2 = &key
	}

	data := &AuthenticatedData{Dashboard: DashboardData{IsEnabledForService: req.IsDashboardEnabledForService}}
	in := normalize(req)

	// An explicit access key never reads or creates the rc file.
	if in.accessKeyV1 != nil {
		log.Debug("Using Access Key for authentication")
		return r.resolveAccessKey(ctx, in, data)
	}

	cfg, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	if in.accessKeyV2 == nil && cfg.CurrentUser() == nil && !cfg.HasLicenseOrgs() {
		in.accessKeyV2 = r.bootstrapLicenseKey(ctx, req)
	}

	if in.accessKeyV2 == nil && cfg.CurrentUser() == nil && !cfg.HasLicenseOrgs() {
		log.Debug("No access key, license key, user session or stored license key found")
		if !r.prompter.IsInteractive() {
			return nil, failure(errUtils.ErrAuthRequired, signInRequiredMessage)
		}

		message := req.AuthenticateMessage
		if message == "" {
			message = defaultAuthenticateMessage
		}
		if _, err := r.AuthenticateInteractive(ctx, message); err != nil {
			return nil, err
		}
		data.Dashboard.RequiredAuthentication = true

		if cfg, err = r.store.Load(); err != nil {
			return nil, err
		}
	}

	if user := cfg.CurrentUser(); user != nil {
		log.Debug("User session found", "file", r.store.FileName())
		return r.resolveSession(ctx, in, user, data)
	}

	if req.IsDashboardEnabledForService {
		return nil, errUtils.Coded(errUtils.ErrLicenseKeyDashboardConflict, errUtils.CodeInvalidConfig,
			`This Service is enabled for Serverless Framework Dashboard because the "app" property is set. However, you are using a License Key and Dashboard features are not available when using License Keys. Please remove "app" and any other Dashboard features to continue using this Service.`)
	}

	if in.accessKeyV2 != nil {
		log.Debug("Using License Key for authentication")
		return r.resolveLicenseKey(ctx, in, data)
	}

	if cfg.HasLicenseOrgs() {
		log.Debug("License key found", "file", r.store.FileName())
		return r.resolveStoredLicenseKey(ctx, in, cfg, data)
	}

	return nil, failure(errUtils.ErrUnableToDetermineAuth,
		`Unable to determine authentication method. Please delete the %s file on your machine and run "%s login" again.`, r.rcFileLabel(), r.cliName())
}

// bootstrapLicenseKey reads a license key from SSM. Failures are logged and ignored.
func (r *Resolver) bootstrapLicenseKey(ctx context.Context, req Request) *string {
	if r.licenseKeys == nil {
		return nil
	}
	key, err := r.licenseKeys.Fetch(ctx, req.AWSRegion, req.AWSProfile)
	if err != nil {
		log.Debug("License key not available from SSM", "error", err)
		return nil
	}
	log.Debug("Fetched License Key from SSM")
	return nonEmpty(key)
}

// resolveAccessKey validates an explicit access key. The key is never persisted.
func (r *Resolver) resolveAccessKey(ctx context.Context, in normalized, data *AuthenticatedData) (*AuthenticatedData, error) {
	clientData, err := r.GetClientData(ctx, in.clientDataRequest(*in.accessKeyV1, false))
	if err != nil {
		return nil, err
	}

	identity := clientData.Data.CallerIdentity
	if in.orgName != nil && *in.orgName != identity.OrgName {
		return nil, orgMismatch("Access Key", *in.orgName)
	}

	data.AccessKeyV1 = in.accessKeyV1
	fillFromAccessKey(data, clientData)
	return data, nil
}

// fillFromAccessKey copies access key client data into data.
func fillFromAccessKey(data *AuthenticatedData, clientData *dashboard.ClientData) {
	identity := clientData.Data.CallerIdentity
	data.UserID = nonEmpty(identity.UserID)
	data.UserName = nonEmpty(identity.UserName)
	data.OrgID = nonEmpty(identity.OrgID)
	data.OrgName = nonEmpty(identity.OrgName)
	data.UserEmail = nonEmpty(identity.UserEmail)
	data.Subscription = clientData.Data.Subscription
	data.Notifications = notificationsOf(clientData)

	if !data.Dashboard.IsEnabledForService {
		return
	}
	data.Dashboard.OrgFeaturesInUse = clientData.Metadata
	data.Dashboard.OrgObservabilityIntegrations = clientData.Data.Integrations
	if clientData.Data.Service != nil {
		data.Dashboard.ServiceAppID = nonEmpty(clientData.Data.Service.AppUID)
	}
	data.Dashboard.ServiceProvider = clientData.Data.Provider
	data.Dashboard.InstanceParameters = clientData.Data.Parameters
}

// fillFromLicenseKey copies license key client data into data. Dashboard fields are never set.
func fillFromLicenseKey(data *AuthenticatedData, clientData *dashboard.ClientData) {
	identity := clientData.Data.CallerIdentity
	data.AccessKeyV2Label = nonEmpty(identity.AccessKeyV2Label)
	data.OrgID = nonEmpty(identity.OrgID)
	data.OrgName = nonEmpty(identity.OrgName)
	data.UserEmail = nonEmpty(identity.UserEmail)
	data.Subscription = clientData.Data.Subscription
	data.Notifications = notificationsOf(clientData)
}

func notificationsOf(clientData *dashboard.ClientData) []json.RawMessage {
	if clientData.Data.Notifications == nil {
		return []json.RawMessage{}
	}
	return clientData.Data.Notifications
}

func orgMismatch(keyKind, orgName string) error {
	article := "an"
	if keyKind == "License Key" {
		article = "a"
	}
	return failure(errUtils.ErrOrgMismatch,
		`The provided %s is not for the Org "%s". Please provide %s %s for the "%s" Org.`, keyKind, orgName, article, keyKind, orgName)
}

// failure builds a user-facing error whose message is the formatted text and which matches sentinel.
func failure(sentinel error, format string, args ...any) error {
	return errUtils.Buildf(format, args...).WithSentinel(sentinel).Err()
}

// cliName is the command users run, e.g. "serverless".
func (r *Resolver) cliName() string {
	return r.settings.RCBaseName
}

// rcFileLabel is the rc file name used in messages, e.g. ".serverlessrc".
func (r *Resolver) rcFileLabel() string {
	return "." + r.settings.RCBaseName + "rc"
}
