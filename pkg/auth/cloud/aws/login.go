package aws

import (
	"context"
	"io"
	"os"
	"time"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/callback"
	"github.com/serverless/sfauth/pkg/browser"
	httpClient "github.com/serverless/sfauth/pkg/http"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

// LoginContext carries the collaborators shared by the console and SSO login flows.
type LoginContext struct {
	Store      *ConfigStore
	Prompter   prompt.Prompter
	Browser    browser.Opener
	HTTPClient httpClient.Client
	// Out receives the manual-login URL when the browser cannot be opened.
	Out io.Writer
	// CallbackTimeout defaults to callback.DefaultTimeout.
	CallbackTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewLoginContext wires the default collaborators.
func NewLoginContext(p prompt.Prompter) *LoginContext {
	return &LoginContext{
		Store:      NewConfigStore(),
		Prompter:   p,
		Browser:    browser.NewSystemOpener(),
		HTTPClient: httpClient.NewDefaultClient(),
		Out:        os.Stderr,
	}
}

func (c *LoginContext) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *LoginContext) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stderr
}

func (c *LoginContext) store() *ConfigStore {
	if c.Store == nil {
		c.Store = NewConfigStore()
	}
	return c.Store
}

// requireInteractive fails with the flow's non-interactive code unless a TTY is attached.
func (c *LoginContext) requireInteractive(code, command string) error {
	if c.Prompter != nil && c.Prompter.IsInteractive() {
		return nil
	}
	return errUtils.Coded(errUtils.ErrNonInteractive, code,
		"The `%s` command requires an interactive environment (TTY) to authenticate.", command)
}

// startCallback starts the loopback listener for one login attempt.
func (c *LoginContext) startCallback(ctx context.Context, opts callback.Options) (*callback.Server, error) {
	if opts.Timeout == 0 {
		opts.Timeout = c.CallbackTimeout
	}
	return callback.Start(ctx, opts)
}

// awaitCode opens authURL, waits for the callback to settle and always closes the server.
// An empty code is reported with noCode.
func (c *LoginContext) awaitCode(ctx context.Context, server *callback.Server, authURL, waiting, noCode string) (string, error) {
	defer server.Close()

	browser.OpenOrPrint(c.Browser, c.out(), authURL)

	if c.Prompter != nil {
		c.Prompter.Aside(waiting)
	}
	log.Debug("Waiting for authorization callback", "port", server.Port())
	code, err := server.Wait(ctx).Unwrap()
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", errUtils.Coded(errUtils.ErrLoginNoCode, noCode, "Failed to get authorization code")
	}
	return code, nil
}

// profileValue reads a key from the profile section of the config file.
func (c *LoginContext) profileValue(profile, key string) (string, error) {
	configPath, err := c.store().ConfigPath()
	if err != nil {
		return "", err
	}
	value, _, err := c.store().GetSectionValue(ProfileSectionName(profile), key, configPath)
	return value, err
}

func profileOrDefault(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}

// formatExpiry renders t the way the AWS CLI caches do.
func formatExpiry(t time.Time) string {
	return t.UTC().Format(expiryLayout)
}

// formatRegistrationExpiry renders t with milliseconds, as client registration caches are written.
func formatRegistrationExpiry(t time.Time) string {
	return t.UTC().Format(registrationExpiryLayout)
}

const (
	expiryLayout             = "2006-01-02T15:04:05Z"
	registrationExpiryLayout = "2006-01-02T15:04:05.000Z"
)
