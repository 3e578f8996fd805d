package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/auth/rc"
	"github.com/serverless/sfauth/pkg/dashboard"
	httpClient "github.com/serverless/sfauth/pkg/http"
	"github.com/serverless/sfauth/pkg/ui/prompt"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	home     string
	work     string
	store    *rc.Store
	client   *dashboard.MockClient
	prompter *prompt.MockPrompter
	broker   *dashboard.MockLoginBroker
	opened   []string
	resolver *Resolver
}

type fakeLicenseSource struct {
	key     string
	err     error
	calls   int
	region  string
	profile string
}

func (f *fakeLicenseSource) Fetch(_ context.Context, region, profile string) (string, error) {
	f.calls++
	f.region, f.profile = region, profile
	return f.key, f.err
}

func clearAuthEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SERVERLESS_ACCESS_KEY",
		"SERVERLESS_USER_ACCESS_KEY",
		"SERVERLESS_LICENSE_KEY",
		"SERVERLESS_ORG_ACCESS_KEY",
		"SERVERLESS_ORG_NAME",
	} {
		t.Setenv(name, "")
	}
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clearAuthEnv(t)

	ctrl := gomock.NewController(t)
	f := &fixture{
		home:     t.TempDir(),
		work:     t.TempDir(),
		client:   dashboard.NewMockClient(ctrl),
		prompter: prompt.NewMockPrompter(ctrl),
		broker:   dashboard.NewMockLoginBroker(ctrl),
	}
	clock := func() time.Time { return testNow }
	f.store = rc.NewStore(rc.DefaultFileName, rc.WithHomeDir(f.home), rc.WithWorkDir(f.work), rc.WithClock(clock))

	base := []Option{
		WithLoginBroker(f.broker),
		WithClock(clock),
		WithSleep(func(time.Duration) {}),
		WithOutput(&discard{}),
		WithBrowser(openerFunc(func(url string) error {
			f.opened = append(f.opened, url)
			return nil
		})),
	}
	f.resolver = NewResolver(f.store, f.client, f.prompter, append(base, opts...)...)
	return f
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

type openerFunc func(url string) error

func (o openerFunc) Open(url string) error { return o(url) }

func (f *fixture) rcPath() string {
	return filepath.Join(f.home, rc.DefaultFileName)
}

func (f *fixture) writeRC(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.rcPath(), []byte(content), rc.FilePermission))
}

func (f *fixture) load(t *testing.T) *rc.Config {
	t.Helper()
	cfg, err := f.store.Load()
	require.NoError(t, err)
	return cfg
}

func (f *fixture) interactive(interactive bool) {
	f.prompter.EXPECT().IsInteractive().Return(interactive).AnyTimes()
}

func idToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func clientData(orgName, orgID string) *dashboard.ClientData {
	return &dashboard.ClientData{
		Data: dashboard.ClientDataBody{
			CallerIdentity: &dashboard.CallerIdentity{
				UserID:    "user-1",
				UserName:  "jane",
				UserEmail: "jane@example.com",
				OrgID:     orgID,
				OrgName:   orgName,
			},
			Subscription: []byte(`{"plan":"free"}`),
		},
	}
}

func ptr(s string) *string { return &s }

func TestGetAuthenticatedData_ExplicitAccessKey(t *testing.T) {
	f := newFixture(t)

	f.client.EXPECT().
		GetClientData(gomock.Any(), "ak-1", dashboard.ClientDataParams{
			ServiceName: ptr("api"),
			Stage:       ptr("dev"),
			Region:      ptr("us-east-1"),
		}).
		Return(clientData("acme", "org-1"), nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{
		AccessKeyV1: ptr(" ak-1 "),
		ServiceName: ptr("api"),
	})
	require.NoError(t, err)

	assert.Equal(t, "ak-1", *data.AccessKeyV1)
	assert.Nil(t, data.AccessKeyV2)
	assert.Equal(t, "acme", *data.OrgName)
	assert.Equal(t, "org-1", *data.OrgID)
	assert.Equal(t, "jane", *data.UserName)
	assert.JSONEq(t, `{"plan":"free"}`, string(data.Subscription))
	assert.NotNil(t, data.Notifications)
	assert.Empty(t, data.Notifications)
	assert.Nil(t, data.Dashboard.ServiceAppID)

	_, statErr := os.Stat(f.rcPath())
	assert.True(t, os.IsNotExist(statErr), "rc file must not be created")
}

func TestGetAuthenticatedData_AccessKeyFromEnvWins(t *testing.T) {
	f := newFixture(t)
	t.Setenv("SERVERLESS_ACCESS_KEY", "env-key")

	f.client.EXPECT().GetClientData(gomock.Any(), "env-key", gomock.Any()).Return(clientData("acme", "org-1"), nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV1: ptr("flag-key")})
	require.NoError(t, err)
	assert.Equal(t, "env-key", *data.AccessKeyV1)
}

func TestGetAuthenticatedData_AccessKeyDashboardFields(t *testing.T) {
	f := newFixture(t)

	cd := clientData("acme", "org-1")
	cd.Data.Service = &dashboard.ServiceInfo{AppUID: "app-1"}
	cd.Data.Integrations = []byte(`[{"type":"datadog"}]`)
	cd.Metadata = []byte(`{"features":["ci"]}`)
	f.client.EXPECT().GetClientData(gomock.Any(), "ak-1", gomock.Any()).Return(cd, nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{
		AccessKeyV1:                  ptr("ak-1"),
		IsDashboardEnabledForService: true,
	})
	require.NoError(t, err)
	require.NotNil(t, data.Dashboard.ServiceAppID)
	assert.Equal(t, "app-1", *data.Dashboard.ServiceAppID)
	assert.JSONEq(t, `[{"type":"datadog"}]`, string(data.Dashboard.OrgObservabilityIntegrations))
	assert.JSONEq(t, `{"features":["ci"]}`, string(data.Dashboard.OrgFeaturesInUse))
}

func TestGetAuthenticatedData_AccessKeyOrgMismatch(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetClientData(gomock.Any(), "ak-1", gomock.Any()).Return(clientData("other", "org-2"), nil)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV1: ptr("ak-1"), OrgName: ptr("acme")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrOrgMismatch)
	assert.Equal(t, `The provided Access Key is not for the Org "acme". Please provide an Access Key for the "acme" Org.`, err.Error())
}

func TestGetAuthenticatedData_AccessKeyRejected(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetClientData(gomock.Any(), "ak-1", gomock.Any()).Return(nil, &httpClient.StatusError{
		StatusCode: 401,
		Status:     "401 Unauthorized",
		Body:       []byte(`{"message":"Invalid access key"}`),
	})

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV1: ptr("ak-1")})
	require.Error(t, err)
	assert.Equal(t, "Invalid access key", err.Error())
	assert.Equal(t, errUtils.CodeAuthFailed, errUtils.GetCode(err))
}

func TestGetAuthenticatedData_AccessKeyUnreachable(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetClientData(gomock.Any(), "ak-1", gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV1: ptr("ak-1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrAPIUnreachable)
	assert.Contains(t, err.Error(), "Unable to reach the Serverless API (connection refused)")
	assert.Equal(t, errUtils.CodeAuthFailed, errUtils.GetCode(err))
}

func TestGetAuthenticatedData_MissingCallerIdentity(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetClientData(gomock.Any(), "ak-1", gomock.Any()).Return(&dashboard.ClientData{}, nil)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV1: ptr("ak-1")})
	assert.ErrorIs(t, err, errUtils.ErrInvalidCallerIdentity)
}

func TestGetAuthenticatedData_NonInteractiveWithoutCredentials(t *testing.T) {
	f := newFixture(t)
	f.interactive(false)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrAuthRequired)
	assert.Equal(t, signInRequiredMessage, err.Error())
}

func TestGetAuthenticatedData_SessionAutoPicksSingleOrg(t *testing.T) {
	f := newFixture(t)
	token := idToken(t, testNow.Add(time.Hour))
	f.writeRC(t, `{"userId":"user-1","users":{"user-1":{"userId":"user-1","username":"jane","dashboard":{"idToken":"`+token+`","refreshToken":"rt-1"}}},"accessKeys":{"orgs":{}}}`)
	f.interactive(false)

	gomock.InOrder(
		f.client.EXPECT().ListOrgs(gomock.Any(), token, "jane").Return([]dashboard.Org{{OrgUID: "org-1", OrgName: "acme", Role: "owner"}}, nil),
		f.client.EXPECT().CreateAccessKey(gomock.Any(), token, dashboard.AccessKeyRequest{
			Title:    "serverless_framework_312026",
			OrgName:  "acme",
			UserName: "jane",
		}).Return(&dashboard.AccessKey{UserUID: "user-1", SecretAccessKey: "minted"}, nil),
		f.client.EXPECT().GetClientData(gomock.Any(), "minted", gomock.Any()).Return(clientData("acme", "org-1"), nil).Times(2),
	)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "minted", *data.AccessKeyV1)
	assert.Equal(t, "acme", *data.OrgName)
	assert.False(t, data.Dashboard.RequiredAuthentication)

	user := f.load(t).CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "acme", user.DefaultOrgName)
	assert.Equal(t, "minted", user.Dashboard.AccessKeys["acme"])

	// The saved default org and access key skip org listing and key creation.
	data, err = f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "minted", *data.AccessKeyV1)
}

func TestGetAuthenticatedData_SessionRefreshesExpiredToken(t *testing.T) {
	f := newFixture(t)
	fresh := idToken(t, testNow.Add(time.Hour))
	f.writeRC(t, `{"userId":"user-1","users":{"user-1":{"userId":"user-1","username":"jane","defaultOrgName":"acme","dashboard":{"idToken":"stale","refreshToken":"rt-1","accessKeys":{"acme":"ak-acme"}}}},"accessKeys":{"orgs":{}}}`)

	gomock.InOrder(
		f.client.EXPECT().RefreshAccessToken(gomock.Any(), "rt-1").Return(&dashboard.Tokens{
			IDToken:      fresh,
			AccessToken:  "at-2",
			RefreshToken: "rt-2",
			ExpiresIn:    3600000,
		}, nil),
		f.client.EXPECT().GetCurrentUser(gomock.Any(), fresh).Return(&dashboard.User{FullName: "Jane Doe", Email: "jane@example.com", UserName: "jane"}, nil),
		f.client.EXPECT().GetClientData(gomock.Any(), "ak-acme", gomock.Any()).Return(clientData("acme", "org-1"), nil),
	)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ak-acme", *data.AccessKeyV1)

	user := f.load(t).CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, fresh, user.Dashboard.IDToken)
	assert.Equal(t, "rt-2", user.Dashboard.RefreshToken)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.JSONEq(t, "1772370000000", string(user.Dashboard.ExpiresAt))
}

func TestGetAuthenticatedData_SessionWithoutRefreshTokenIsDeleted(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, `{"userId":"user-1","users":{"user-1":{"userId":"user-1","dashboard":{"idToken":"x"}}},"accessKeys":{"orgs":{}}}`)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrInvalidUserSession)

	cfg := f.load(t)
	assert.Nil(t, cfg.CurrentUser())
	assert.NotContains(t, cfg.Users, "user-1")
}

func TestGetAuthenticatedData_SessionNotOrgMember(t *testing.T) {
	f := newFixture(t)
	token := idToken(t, testNow.Add(time.Hour))
	f.writeRC(t, `{"userId":"user-1","users":{"user-1":{"userId":"user-1","username":"jane","dashboard":{"idToken":"`+token+`","refreshToken":"rt-1"}}},"accessKeys":{"orgs":{}}}`)

	f.client.EXPECT().CreateAccessKey(gomock.Any(), token, gomock.Any()).Return(nil, &httpClient.StatusError{StatusCode: 404, Status: "404 Not Found"})

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{OrgName: ptr("elsewhere")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrNotOrgMember)
	assert.Contains(t, err.Error(), `You are not a member of the Org "elsewhere"`)
}

func TestGetAuthenticatedData_SessionPicksOldestOwnedOrgNonInteractive(t *testing.T) {
	f := newFixture(t)
	token := idToken(t, testNow.Add(time.Hour))
	f.writeRC(t, `{"userId":"user-1","users":{"user-1":{"userId":"user-1","username":"jane","dashboard":{"idToken":"`+token+`","refreshToken":"rt-1","accessKeys":{"owned-old":"ak-old"}}}},"accessKeys":{"orgs":{}}}`)
	f.interactive(false)

	f.client.EXPECT().ListOrgs(gomock.Any(), token, "jane").Return([]dashboard.Org{
		{OrgName: "member-oldest", Role: "member", CreatedAt: "1000"},
		{OrgName: "owned-new", Role: "owner", CreatedAt: "3000"},
		{OrgName: "owned-old", Role: "owner", CreatedAt: "2000"},
	}, nil)
	f.client.EXPECT().GetClientData(gomock.Any(), "ak-old", gomock.Any()).Return(clientData("owned-old", "org-2"), nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "owned-old", *data.OrgName)
	assert.Equal(t, "owned-old", f.load(t).CurrentUser().DefaultOrgName)
}

func TestGetAuthenticatedData_DashboardConflictBeforeNetwork(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{
		AccessKeyV2:                  ptr("lk-1"),
		IsDashboardEnabledForService: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrLicenseKeyDashboardConflict)
	assert.Equal(t, errUtils.CodeInvalidConfig, errUtils.GetCode(err))
}

func TestGetAuthenticatedData_LicenseKey(t *testing.T) {
	f := newFixture(t)

	cd := clientData("acme", "org-1")
	cd.Data.CallerIdentity.AccessKeyV2Label = "ci"
	f.client.EXPECT().GetClientData(gomock.Any(), "lk-1", dashboard.ClientDataParams{}).Return(cd, nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV2: ptr("lk-1")})
	require.NoError(t, err)
	assert.Equal(t, "lk-1", *data.AccessKeyV2)
	assert.Nil(t, data.AccessKeyV1)
	assert.Equal(t, "ci", *data.AccessKeyV2Label)
	assert.Equal(t, "acme", *data.OrgName)
	assert.Nil(t, data.UserID)

	assert.False(t, f.load(t).HasLicenseOrgs(), "explicit license keys are not persisted")
}

func TestGetAuthenticatedData_LicenseKeyServerErrorDegrades(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetClientData(gomock.Any(), "lk-1", gomock.Any()).Return(nil, &httpClient.StatusError{StatusCode: 503, Status: "503 Service Unavailable"})
	f.prompter.EXPECT().Warning(gomock.Any())

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV2: ptr("lk-1")})
	require.NoError(t, err)
	assert.Equal(t, "lk-1", *data.AccessKeyV2)
	assert.Nil(t, data.OrgName)
	assert.Nil(t, data.OrgID)
}

func TestGetAuthenticatedData_LicenseKeyOrgMismatch(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetClientData(gomock.Any(), "lk-1", gomock.Any()).Return(clientData("other", "org-2"), nil)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AccessKeyV2: ptr("lk-1"), OrgName: ptr("acme")})
	require.Error(t, err)
	assert.Equal(t, `The provided License Key is not for the Org "acme". Please provide a License Key for the "acme" Org.`, err.Error())
}

func TestGetAuthenticatedData_LicenseKeyBootstrappedFromSSM(t *testing.T) {
	source := &fakeLicenseSource{key: "lk-ssm"}
	f := newFixture(t, WithLicenseKeySource(source))
	f.client.EXPECT().GetClientData(gomock.Any(), "lk-ssm", gomock.Any()).Return(clientData("acme", "org-1"), nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{AWSRegion: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "lk-ssm", *data.AccessKeyV2)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, "eu-west-1", source.region)
}

func TestAuthenticate_SSMUsesProfileAndRegion(t *testing.T) {
	source := &fakeLicenseSource{key: "lk-ssm"}
	f := newFixture(t, WithLicenseKeySource(source))
	f.client.EXPECT().GetClientData(gomock.Any(), "lk-ssm", gomock.Any()).Return(clientData("acme", "org-1"), nil)

	_, err := f.resolver.Authenticate(context.Background(), nil, Options{Region: "ap-south-1", AWSProfile: "ops"})
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", source.region)
	assert.Equal(t, "ops", source.profile)
}

func TestGetAuthenticatedData_SSMFailureFallsThrough(t *testing.T) {
	source := &fakeLicenseSource{err: errUtils.ErrSSMParameterNotFound}
	f := newFixture(t, WithLicenseKeySource(source))
	f.interactive(false)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	assert.ErrorIs(t, err, errUtils.ErrAuthRequired)
	assert.Equal(t, 1, source.calls)
}

const twoLicenseOrgs = `{"userId":null,"users":{},"accessKeys":{"orgs":{
  "acme":{"accessKey":"lk-acme","orgName":"acme","orgId":"org-1"},
  "beta":{"accessKey":"lk-beta","orgName":"beta","orgId":"org-2"}
},"defaultOrgName":null}}`

func TestGetAuthenticatedData_StoredLicenseKeyDefault(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, `{"userId":null,"users":{},"accessKeys":{"orgs":{
  "acme":{"accessKey":"lk-acme","orgName":"acme","orgId":"org-1"},
  "beta":{"accessKey":"lk-beta","orgName":"beta","orgId":"org-2"}
},"defaultOrgName":"beta"}}`)

	f.client.EXPECT().GetClientData(gomock.Any(), "lk-beta", dashboard.ClientDataParams{}).Return(clientData("beta", "org-2"), nil)

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "lk-beta", *data.AccessKeyV2)
	assert.Equal(t, "beta", *data.OrgName)
}

func TestGetAuthenticatedData_StoredLicenseKeySingleOrgBecomesDefault(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, `{"userId":null,"users":{},"accessKeys":{"orgs":{"acme":{"accessKey":"lk-acme","orgName":"acme","orgId":"org-1"}},"defaultOrgName":null}}`)

	f.client.EXPECT().GetClientData(gomock.Any(), "lk-acme", gomock.Any()).Return(clientData("acme", "org-1"), nil)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "acme", f.load(t).DefaultLicenseOrg())
}

func TestGetAuthenticatedData_StoredLicenseKeyDriftSaved(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, `{"userId":null,"users":{},"accessKeys":{"orgs":{"acme":{"accessKey":"lk-acme","orgName":"acme","orgId":"org-old"}},"defaultOrgName":"acme"}}`)

	cd := clientData("acme", "org-1")
	cd.Data.CallerIdentity.AccessKeyV2Label = "laptop"
	f.client.EXPECT().GetClientData(gomock.Any(), "lk-acme", gomock.Any()).Return(cd, nil)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)

	stored := f.load(t).AccessKeys.Orgs["acme"]
	require.NotNil(t, stored)
	assert.Equal(t, "org-1", stored.OrgID)
	assert.Equal(t, "laptop", stored.AccessKeyV2Label)
}

func TestGetAuthenticatedData_StoredLicenseKeyMultipleOrgs(t *testing.T) {
	t.Run("non interactive", func(t *testing.T) {
		f := newFixture(t)
		f.writeRC(t, twoLicenseOrgs)
		f.interactive(false)

		_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errUtils.ErrMultipleLicenseOrgs)
	})

	t.Run("interactive choice saved as default", func(t *testing.T) {
		f := newFixture(t)
		f.writeRC(t, twoLicenseOrgs)
		f.interactive(true)

		f.prompter.EXPECT().
			Choose(gomock.Any(), "You have multiple Orgs with License Keys. Please select an Org to use", []prompt.Option{
				{Label: "acme", Value: "acme"},
				{Label: "beta", Value: "beta"},
			}).
			Return("beta", nil)
		f.prompter.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true, nil)
		f.client.EXPECT().GetClientData(gomock.Any(), "lk-beta", gomock.Any()).Return(clientData("beta", "org-2"), nil)

		data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "beta", *data.OrgName)
		assert.Equal(t, "beta", f.load(t).DefaultLicenseOrg())
	})
}

func TestGetAuthenticatedData_StoredLicenseKeyMissingForOrg(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, twoLicenseOrgs)

	_, err := f.resolver.GetAuthenticatedData(context.Background(), Request{OrgName: ptr("gamma")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrMissingLicenseKey)
	assert.Contains(t, err.Error(), `There is no License Key for the target Org "gamma"`)
}

func TestGetAuthenticatedData_StoredLicenseKeyServerErrorDegrades(t *testing.T) {
	f := newFixture(t)
	f.writeRC(t, `{"userId":null,"users":{},"accessKeys":{"orgs":{"acme":{"accessKey":"lk-acme","orgName":"acme","orgId":"org-1"}},"defaultOrgName":"acme"}}`)

	f.client.EXPECT().GetClientData(gomock.Any(), "lk-acme", gomock.Any()).Return(nil, &httpClient.StatusError{StatusCode: 500, Status: "500 Internal Server Error"})
	f.prompter.EXPECT().Warning(gomock.Any())

	data, err := f.resolver.GetAuthenticatedData(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "lk-acme", *data.AccessKeyV2)
	assert.Nil(t, data.OrgName)
}

func TestNormalize(t *testing.T) {
	in := normalize(Request{
		OrgName:    ptr("  "),
		AppName:    ptr(" shop "),
		StageName:  ptr(""),
		RegionName: ptr("eu-west-1"),
	})
	assert.Nil(t, in.orgName)
	assert.Equal(t, "shop", *in.appName)
	assert.Equal(t, defaultStage, in.stageName)
	assert.Equal(t, "eu-west-1", in.regionName)
}
