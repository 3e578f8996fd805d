package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

const sessionAndLicenses = `{"userId":"user-1","users":{"user-1":{"userId":"user-1","dashboard":{"refreshToken":"rt"}}},"accessKeys":{"orgs":{
  "acme":{"accessKey":"lk-acme","orgName":"acme","orgId":"org-1"},
  "beta":{"accessKey":"lk-beta","orgName":"beta","orgId":"org-2"}
},"defaultOrgName":"beta"}}`

func TestUnauthenticate_NonInteractive(t *testing.T) {
	f := newFixture(t)
	f.interactive(false)

	err := f.resolver.Unauthenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrLogoutNonInteractive)
	assert.Equal(t, errUtils.ExitCodeNonInteractive, errUtils.GetExitCode(err))
}

func TestUnauthenticate_SessionOnly(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, `{"userId":"user-1","users":{"user-1":{"userId":"user-1","dashboard":{"refreshToken":"rt"}}},"accessKeys":{"orgs":{}}}`)
	f.interactive(true)

	require.NoError(t, f.resolver.Unauthenticate(context.Background()))

	cfg := f.load(t)
	assert.Nil(t, cfg.CurrentUser())
	assert.Contains(t, cfg.Users, "user-1")
}

func TestUnauthenticate_ChoosesUserSession(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, sessionAndLicenses)
	f.interactive(true)

	f.prompter.EXPECT().
		Choose(gomock.Any(), "Would you like to log out of your User Session or delete a License Key?", []prompt.Option{
			{Label: "Logout User Session", Value: logoutUserSession},
			{Label: "Delete License Key", Value: logoutLicenseKey},
		}).
		Return(logoutUserSession, nil)

	require.NoError(t, f.resolver.Unauthenticate(context.Background()))

	cfg := f.load(t)
	assert.Nil(t, cfg.CurrentUser())
	assert.Len(t, cfg.AccessKeys.Orgs, 2)
}

func TestUnauthenticate_DeletesLicenseKey(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, sessionAndLicenses)
	f.interactive(true)

	gomock.InOrder(
		f.prompter.EXPECT().Choose(gomock.Any(), gomock.Any(), gomock.Any()).Return(logoutLicenseKey, nil),
		f.prompter.EXPECT().
			Choose(gomock.Any(), "Please select a License Key to delete", []prompt.Option{
				{Label: "acme", Value: "acme"},
				{Label: "beta", Value: "beta"},
			}).
			Return("beta", nil),
	)

	require.NoError(t, f.resolver.Unauthenticate(context.Background()))

	cfg := f.load(t)
	assert.NotContains(t, cfg.AccessKeys.Orgs, "beta")
	assert.Contains(t, cfg.AccessKeys.Orgs, "acme")
	assert.Empty(t, cfg.DefaultLicenseOrg())
	assert.NotNil(t, cfg.CurrentUser(), "the user session is kept")
}

func TestUnauthenticate_PromptCanceled(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, sessionAndLicenses)
	f.interactive(true)
	f.prompter.EXPECT().Choose(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errUtils.ErrPromptCanceled)

	err := f.resolver.Unauthenticate(context.Background())
	assert.ErrorIs(t, err, errUtils.ErrPromptCanceled)
	assert.Len(t, f.load(t).AccessKeys.Orgs, 2)
}
