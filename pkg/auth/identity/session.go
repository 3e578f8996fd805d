package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/rc"
	"github.com/serverless/sfauth/pkg/dashboard"
	httpClient "github.com/serverless/sfauth/pkg/http"
	log "github.com/serverless/sfauth/pkg/logger"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

const ownerRole = "owner"

// resolveSession authenticates with the access key of a cached user session, minting one when needed.
func (r *Resolver) resolveSession(ctx context.Context, in normalized, user *rc.UserSession, data *AuthenticatedData) (*AuthenticatedData, error) {
	if user.Dashboard.RefreshToken == "" {
		if err := r.store.DeleteUser(user.UserID); err != nil {
			return nil, err
		}
		return nil, failure(errUtils.ErrInvalidUserSession,
			`There is an error with your User session. Please login again via "%s login".`, r.cliName())
	}

	idToken := user.Dashboard.IDToken
	if dashboard.IDTokenExpired(idToken, r.now()) {
		log.Debug("Refreshing expired user session")
		refreshed, err := r.refreshSession(ctx, user.UserID, user.Dashboard.RefreshToken)
		if err != nil {
			return nil, err
		}
		idToken = refreshed

		cfg, err := r.store.Load()
		if err != nil {
			return nil, err
		}
		if current := cfg.CurrentUser(); current != nil {
			user = current
		}
	}

	orgName := deref(in.orgName)
	if orgName == "" {
		orgName = user.DefaultOrgName
	}
	if orgName == "" {
		picked, err := r.pickSessionOrg(ctx, user, idToken)
		if err != nil {
			return nil, err
		}
		orgName = picked
	}

	accessKey := user.Dashboard.AccessKeys[orgName]
	if accessKey == "" {
		minted, err := r.createAccessKey(ctx, user, orgName, idToken)
		if err != nil {
			return nil, err
		}
		accessKey = minted
	}

	clientData, err := r.GetClientData(ctx, in.clientDataRequest(accessKey, false))
	if err != nil {
		return nil, err
	}
	if orgName != clientData.Data.CallerIdentity.OrgName {
		return nil, orgMismatch("Access Key", orgName)
	}

	data.AccessKeyV1 = &accessKey
	fillFromAccessKey(data, clientData)
	return data, nil
}

// refreshSession exchanges the refresh token, saves the new tokens and profile, and returns the new id token.
func (r *Resolver) refreshSession(ctx context.Context, userID, refreshToken string) (string, error) {
	tokens, err := r.client.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: refreshing user session: %w", errUtils.ErrAuthFailed, err)
	}
	user, err := r.client.GetCurrentUser(ctx, tokens.IDToken)
	if err != nil {
		return "", fmt.Errorf("%w: reading current user: %w", errUtils.ErrAuthFailed, err)
	}

	update := rc.UserUpdate{
		UserID:       userID,
		Name:         user.FullName,
		Email:        user.Email,
		Username:     user.UserName,
		RefreshToken: tokens.RefreshToken,
		AccessToken:  tokens.AccessToken,
		IDToken:      tokens.IDToken,
	}
	if tokens.ExpiresIn > 0 {
		update.ExpiresAt = r.now().UnixMilli() + tokens.ExpiresIn
	}
	if err := r.store.SaveAuthenticatedUser(update); err != nil {
		return "", err
	}
	return tokens.IDToken, nil
}

// pickSessionOrg chooses the org for a session without a default and saves it as the default.
func (r *Resolver) pickSessionOrg(ctx context.Context, user *rc.UserSession, idToken string) (string, error) {
	orgs, err := r.client.ListOrgs(ctx, idToken, user.Username)
	if err != nil {
		return "", fmt.Errorf("%w: listing orgs: %w", errUtils.ErrAuthFailed, err)
	}
	if len(orgs) == 0 {
		return "", r.noOrgsError()
	}

	var orgName string
	switch {
	case len(orgs) == 1:
		orgName = orgs[0].OrgName
	case r.prompter.IsInteractive():
		orgName, err = r.prompter.Choose(ctx, "You have multiple Orgs. Please select a default Org to use with this user account.", orgOptions(orgs))
		if err != nil {
			return "", err
		}
	default:
		orgName = oldestOwnedOrg(orgs).OrgName
	}

	if err := r.store.SaveAuthenticatedUser(rc.UserUpdate{UserID: user.UserID, DefaultOrgName: orgName}); err != nil {
		return "", err
	}
	log.Debug("Saved default org", "org", orgName)
	return orgName, nil
}

// oldestOwnedOrg returns the oldest org the user owns, or the oldest org when the user owns none.
func oldestOwnedOrg(orgs []dashboard.Org) dashboard.Org {
	candidates := lo.Filter(orgs, func(org dashboard.Org, _ int) bool {
		return org.Role == ownerRole
	})
	if len(candidates) == 0 {
		candidates = orgs
	}
	return lo.MinBy(candidates, func(a, b dashboard.Org) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func orgOptions(orgs []dashboard.Org) []prompt.Option {
	return lo.Map(orgs, func(org dashboard.Org, _ int) prompt.Option {
		return prompt.Option{Label: org.OrgName, Value: org.OrgName}
	})
}

// createAccessKey mints an access key for orgName and saves it in the session.
func (r *Resolver) createAccessKey(ctx context.Context, user *rc.UserSession, orgName, idToken string) (string, error) {
	now := r.now()
	title := fmt.Sprintf("serverless_framework_%d%d%d", int(now.Month()), now.Day(), now.Year())

	key, err := r.client.CreateAccessKey(ctx, idToken, dashboard.AccessKeyRequest{
		Title:    title,
		OrgName:  orgName,
		UserName: user.Username,
	})
	if err != nil {
		if status := httpClient.StatusCode(err); status == http.StatusNotFound || status == http.StatusForbidden {
			return "", failure(errUtils.ErrNotOrgMember,
				`You are not a member of the Org "%s". Verify the "org" in your Service configuration (e.g. %s.yml) or that you're providing manually is one your User Account or License Key has access to. Lastly, check the %s file in the home directory of your machine to better understand what user account or License Key you are currently using. You can run "%s login" to change the user account or License Key you are using.`,
				orgName, r.cliName(), r.rcFileLabel(), r.cliName())
		}
		return "", fmt.Errorf("%w: creating access key: %w", errUtils.ErrAuthFailed, err)
	}

	userID := key.UserUID
	if userID == "" {
		userID = user.UserID
	}
	if err := r.store.SaveAuthenticatedUser(rc.UserUpdate{
		UserID:           userID,
		AccessKeyOrgName: orgName,
		AccessKeyOfOrg:   key.SecretAccessKey,
	}); err != nil {
		return "", err
	}
	log.Debug("Created access key", "org", orgName, "key", log.MaskSecret(key.SecretAccessKey))
	return key.SecretAccessKey, nil
}

func (r *Resolver) noOrgsError() error {
	return failure(errUtils.ErrNoOrgMembership,
		"You are not a member of any Serverless Framework Orgs. Please login to the Serverless Dashboard to create an Org, or have support help you create an Org.")
}
