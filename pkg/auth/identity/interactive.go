package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/rc"
	"github.com/serverless/sfauth/pkg/browser"
	"github.com/serverless/sfauth/pkg/dashboard"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

const (
	choiceLogin      = "login"
	choicePurchase   = "purchase"
	choiceLicenseKey = "licenseKey"
	choiceInfo       = "info"

	repromptMessage = "What would you like to do?"
	pricingURL      = "https://serverless.com/pricing"

	// maxMenuRounds bounds how often the menu is shown after info or purchase.
	maxMenuRounds = 20
	checkoutPause = 4 * time.Second
)

var licensingBasics = []string{
	"Serverless Framework V.4 is free for indie devs, most small businesses and non-profits.",
	"Orgs with more than $2M in annual revenue require a commercial License.",
	"Licenses can be purchased w/ credit card or your AWS account via the AWS Marketplace.",
	"License pricing is based on the number of Service Instances (i.e. unique Stages and Regions you have deployed of each Serverless Framework Service) for as low as $2/each.",
	"Using a License is automatic if your team is signed into the Serverless Framework Dashboard. If only want to use the CLI, you can create License Keys and distribute them to your team, making Serverless Framework Dashboard not a requirement.",
	"Determine if you need a License and learn more here: " + pricingURL,
}

// AuthenticateInteractive asks the user how to authenticate and runs the chosen flow until a login
// or license key succeeds.
func (r *Resolver) AuthenticateInteractive(ctx context.Context, message string) (*AuthResult, error) {
	if !r.prompter.IsInteractive() {
		return nil, failure(errUtils.ErrNonInteractive,
			"Unable to login in non-interactive mode. Please use a license key or access key, both of which you can get from the Serverless Framework Dashboard: %s", r.settings.DashboardURL)
	}

	cfg, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	for round := 0; round < maxMenuRounds; round++ {
		choice, err := r.prompter.Choose(ctx, message, r.menuOptions(cfg))
		if err != nil {
			log.Debug("Authentication method prompt failed", "error", err)
			return nil, errUtils.Coded(errUtils.ErrAuthCanceled, errUtils.CodeAuthMethodCanceled, "Authentication method failed")
		}

		switch choice {
		case choiceLogin:
			return r.loginWithBrowser(ctx)
		case choiceLicenseKey:
			return r.enterLicenseKey(ctx, cfg)
		case choiceInfo:
			r.explainLicensing()
		case choicePurchase:
			r.openCheckout()
		default:
			return nil, errUtils.Coded(errUtils.ErrAuthCanceled, errUtils.CodeAuthMethodCanceled, "Authentication method failed")
		}
		message = repromptMessage
	}
	return nil, errUtils.Coded(errUtils.ErrAuthCanceled, errUtils.CodeAuthMethodCanceled, "Authentication method failed")
}

func (r *Resolver) menuOptions(cfg *rc.Config) []prompt.Option {
	licenseLabel := "Enter A License Key"
	if cfg.HasLicenseOrgs() {
		licenseLabel = "Add Another License Key"
	}
	return []prompt.Option{
		{Label: "Login/Register", Value: choiceLogin},
		{Label: "Get A License", Value: choicePurchase},
		{Label: licenseLabel, Value: choiceLicenseKey},
		{Label: "Explain Licensing Basics", Value: choiceInfo},
	}
}

func (r *Resolver) explainLicensing() {
	for _, line := range licensingBasics {
		r.prompter.Aside(line)
	}
	r.prompter.Aside("Obtain a License in Serverless Framework Dashboard here: " + r.settings.DashboardURL)
}

func (r *Resolver) openCheckout() {
	billingURL := r.settings.BillingURL()
	r.prompter.Aside("Opening the License Checkout page within the Serverless Framework Dashboard")
	r.prompter.Aside("You can use a Credit Card or AWS Marketplace to purchase a License.")
	r.prompter.Aside("Learn more about licensing on our pricing page: " + pricingURL)
	r.prompter.Aside("If your browser does not open automatically, use this URL: " + billingURL)
	r.sleep(checkoutPause)
	browser.OpenOrPrint(r.opener, r.out, billingURL)
}

// enterLicenseKey reads a license key, validates it and saves it for its org.
func (r *Resolver) enterLicenseKey(ctx context.Context, cfg *rc.Config) (*AuthResult, error) {
	r.prompter.Aside(fmt.Sprintf("Obtain a Serverless Framework License Key through the dashboard at %s, or use the License Key provided by your organization.", r.settings.DashboardURL))

	licenseKey, err := r.prompter.Input(ctx, prompt.InputOptions{
		Message: "Enter your License Key (input will be hidden)",
		Hidden:  true,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("Enter your License Key")
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	licenseKey = strings.TrimSpace(licenseKey)

	identity, err := r.client.CallerIdentity(ctx, licenseKey)
	if err != nil {
		return nil, errUtils.Build(failure(errUtils.ErrAuthFailed, "%s", dashboard.ErrorMessage(err))).
			WithCode(errUtils.CodeAuthFailed).
			Err()
	}
	if identity == nil || identity.OrgName == "" {
		return nil, failure(errUtils.ErrInvalidCallerIdentity, "Unable to validate License Key. Please ensure you are using a valid License Key.")
	}

	isDefault := !cfg.HasLicenseOrgs()
	if !isDefault && r.prompter.IsInteractive() {
		isDefault, err = r.prompter.Confirm(ctx, fmt.Sprintf(`Would you like to set "%s" as the default Org to use with Serverless Framework?`, identity.OrgName))
		if err != nil {
			return nil, err
		}
	}

	if err := r.store.SaveAccessKeyV2(rc.LicenseKey{
		AccessKey: licenseKey,
		Label:     identity.AccessKeyV2Label,
		OrgName:   identity.OrgName,
		OrgID:     identity.OrgID,
	}, isDefault); err != nil {
		return nil, err
	}
	log.Debug("Saved license key", "org", identity.OrgName, "key", log.MaskSecret(licenseKey))

	r.prompter.Success("License Key successfully validated and saved.")
	return &AuthResult{OrgID: identity.OrgID, OrgName: identity.OrgName, IsDefault: isDefault}, nil
}

// loginWithBrowser runs the broker login, saves the session and picks the default org.
func (r *Resolver) loginWithBrowser(ctx context.Context) (*AuthResult, error) {
	if r.broker == nil {
		return nil, fmt.Errorf("%w: no login broker configured", errUtils.ErrLoginBroker)
	}

	r.prompter.Notice("Opening web browser", "")
	login, err := r.broker.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer login.Close()

	r.prompter.Aside("If your browser does not open automatically, please open this URL:")
	r.prompter.Aside(login.URL())
	browser.OpenOrPrint(r.opener, r.out, login.URL())

	r.prompter.Notice("Waiting for authentication in Serverless Framework Dashboard", "")
	loginData, err := login.Wait(ctx)
	if err != nil {
		return nil, err
	}

	userID := loginData.UserID()
	if err := r.store.SaveAuthenticatedUser(rc.UserUpdate{
		UserID:       userID,
		Name:         loginData.Name,
		Email:        loginData.Email,
		Username:     loginData.Username,
		IDToken:      loginData.IDToken,
		AccessToken:  loginData.AccessToken,
		RefreshToken: loginData.RefreshToken,
		ExpiresAt:    loginData.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	log.Debug("Saved user session", "user", userID)

	idToken := loginData.IDToken
	if dashboard.IDTokenExpired(idToken, r.now()) {
		if idToken, err = r.refreshSession(ctx, userID, loginData.RefreshToken); err != nil {
			return nil, err
		}
	}

	orgs, err := r.client.ListOrgs(ctx, idToken, loginData.Username)
	if err != nil {
		log.Debug("Listing orgs failed", "error", err)
		return nil, failure(errUtils.ErrAuthServiceUnavailable,
			"Sorry, our authentication service is currently experiencing issues. Please try again in a few moments. We've been alerted of the issue.")
	}
	if len(orgs) == 0 {
		return nil, r.noOrgsError()
	}

	orgName, err := r.defaultOrgForLogin(ctx, userID, orgs)
	if err != nil {
		return nil, err
	}
	if err := r.store.SaveAuthenticatedUser(rc.UserUpdate{UserID: userID, DefaultOrgName: orgName}); err != nil {
		return nil, err
	}

	org, found := lo.Find(orgs, func(o dashboard.Org) bool {
		return o.OrgName == orgName
	})
	if !found {
		return nil, failure(errUtils.ErrDefaultOrgNotFound,
			"The specified default org name does not exist. Please login to the Serverless Dashboard to create an Org, or have support help you create an Org.")
	}

	r.prompter.Success("You have successfully signed in.")
	return &AuthResult{OrgID: org.OrgUID, OrgName: org.OrgName, IsDefault: true}, nil
}

// defaultOrgForLogin keeps a default saved by a previous login of the same user.
func (r *Resolver) defaultOrgForLogin(ctx context.Context, userID string, orgs []dashboard.Org) (string, error) {
	cfg, err := r.store.Load()
	if err != nil {
		return "", err
	}
	if user := cfg.Users[userID]; user != nil && user.DefaultOrgName != "" {
		return user.DefaultOrgName, nil
	}
	if len(orgs) == 1 {
		return orgs[0].OrgName, nil
	}
	return r.prompter.Choose(ctx, "You have multiple Orgs. Please select a default Org to use with this user account.", orgOptions(orgs))
}
