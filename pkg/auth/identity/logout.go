package identity

import (
	"context"

	"github.com/samber/lo"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

const (
	logoutUserSession = "userSession"
	logoutLicenseKey  = "licenseKey"
)

// Unauthenticate logs out the user session or deletes a saved license key.
func (r *Resolver) Unauthenticate(ctx context.Context) error {
	if !r.prompter.IsInteractive() {
		return failure(errUtils.ErrLogoutNonInteractive,
			`Unable to logout in non-interactive mode. Please run "%s logout" in an interactive environment.`, r.cliName())
	}

	cfg, err := r.store.Load()
	if err != nil {
		return err
	}
	if !cfg.HasLicenseOrgs() {
		log.Debug("Removing user session")
		return r.store.RemoveUserSession()
	}

	choice, err := r.prompter.Choose(ctx, "Would you like to log out of your User Session or delete a License Key?", []prompt.Option{
		{Label: "Logout User Session", Value: logoutUserSession},
		{Label: "Delete License Key", Value: logoutLicenseKey},
	})
	if err != nil {
		return err
	}
	if choice != logoutLicenseKey {
		log.Debug("Removing user session")
		return r.store.RemoveUserSession()
	}

	options := lo.Map(cfg.LicenseOrgNames(), func(name string, _ int) prompt.Option {
		return prompt.Option{Label: name, Value: name}
	})
	orgName, err := r.prompter.Choose(ctx, "Please select a License Key to delete", options)
	if err != nil {
		return err
	}
	log.Debug("Deleting license key", "org", orgName)
	return r.store.RemoveAccessKeyV2(orgName)
}
