package identity

import (
	"context"

	"github.com/samber/lo"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/rc"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

// resolveLicenseKey validates an explicit license key. The key is never persisted.
func (r *Resolver) resolveLicenseKey(ctx context.Context, in normalized, data *AuthenticatedData) (*AuthenticatedData, error) {
	clientData, err := r.GetClientData(ctx, in.clientDataRequest(*in.accessKeyV2, true))
	if err != nil {
		return nil, err
	}
	data.AccessKeyV2 = in.accessKeyV2
	if clientData == nil {
		return data, nil
	}

	if in.orgName != nil && *in.orgName != clientData.Data.CallerIdentity.OrgName {
		return nil, orgMismatch("License Key", *in.orgName)
	}

	fillFromLicenseKey(data, clientData)
	return data, nil
}

// resolveStoredLicenseKey authenticates with a license key saved in the rc file.
func (r *Resolver) resolveStoredLicenseKey(ctx context.Context, in normalized, cfg *rc.Config, data *AuthenticatedData) (*AuthenticatedData, error) {
	orgName, setAsDefault, err := r.pickLicenseOrg(ctx, in, cfg)
	if err != nil {
		return nil, err
	}

	stored := cfg.AccessKeys.Orgs[orgName]
	if stored == nil || stored.AccessKey == "" {
		return nil, failure(errUtils.ErrMissingLicenseKey,
			`There is no License Key for the target Org "%s". Delete the %s file in your home directory and then run "%s login" again and re-enter your License Key.`,
			orgName, r.rcFileLabel(), r.cliName())
	}

	accessKey := stored.AccessKey
	clientData, err := r.GetClientData(ctx, in.clientDataRequest(accessKey, true))
	if err != nil {
		return nil, err
	}
	data.AccessKeyV2 = &accessKey
	if clientData == nil {
		return data, nil
	}

	identity := clientData.Data.CallerIdentity
	if orgName != identity.OrgName {
		return nil, orgMismatch("License Key", orgName)
	}

	key := rc.LicenseKey{
		AccessKey: accessKey,
		Label:     identity.AccessKeyV2Label,
		OrgName:   orgName,
		OrgID:     identity.OrgID,
	}
	drifted := stored.OrgName != identity.OrgName ||
		stored.OrgID != identity.OrgID ||
		(identity.AccessKeyV2Label != "" && stored.AccessKeyV2Label != identity.AccessKeyV2Label)
	if drifted || setAsDefault {
		if err := r.store.SaveAccessKeyV2(key, setAsDefault); err != nil {
			return nil, err
		}
	}

	fillFromLicenseKey(data, clientData)
	data.OrgName = &orgName
	return data, nil
}

// pickLicenseOrg resolves the target org among stored license keys and whether to save it as the default.
func (r *Resolver) pickLicenseOrg(ctx context.Context, in normalized, cfg *rc.Config) (string, bool, error) {
	if in.orgName != nil {
		return *in.orgName, false, nil
	}
	if org := cfg.DefaultLicenseOrg(); org != "" {
		return org, false, nil
	}

	names := cfg.LicenseOrgNames()
	if len(names) == 1 {
		return names[0], true, nil
	}

	if !r.prompter.IsInteractive() {
		return "", false, failure(errUtils.ErrMultipleLicenseOrgs,
			`You have multiple Orgs with License Keys. Please provide an Org name or set it in your %s.yml, or go into your home directory and set a default Org name under the "accessKeys" property.`,
			r.cliName())
	}

	options := lo.Map(names, func(name string, _ int) prompt.Option {
		return prompt.Option{Label: name, Value: name}
	})
	orgName, err := r.prompter.Choose(ctx, "You have multiple Orgs with License Keys. Please select an Org to use", options)
	if err != nil {
		return "", false, err
	}
	setAsDefault, err := r.prompter.Confirm(ctx, "Would you like to set this Org as the default Org for future commands?")
	if err != nil {
		return "", false, err
	}
	return orgName, setAsDefault, nil
}
