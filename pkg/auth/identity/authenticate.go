package identity

import (
	"context"

	"github.com/serverless/sfauth/pkg/config"
	"github.com/serverless/sfauth/pkg/service"
)

// Options are command line overrides for Authenticate.
type Options struct {
	Org    string
	App    string
	Stage  string
	Region string

	// ComposeOrgName is the org inherited from a compose parent, used when the service sets none.
	ComposeOrgName string

	AuthenticateMessage string

	// AWSProfile and AWSRegion select the account for the SSM license key lookup. AWSRegion falls
	// back to Region.
	AWSProfile string
	AWSRegion  string
}

// Authenticate builds a Request from the service configuration and command line overrides and
// resolves it.
func (r *Resolver) Authenticate(ctx context.Context, svc *service.Config, opts Options) (*AuthenticatedData, error) {
	return r.GetAuthenticatedData(ctx, BuildRequest(svc, opts))
}

// BuildRequest merges overrides, the service configuration and the environment into a Request.
func BuildRequest(svc *service.Config, opts Options) Request {
	req := Request{
		AuthenticateMessage: opts.AuthenticateMessage,
		AWSProfile:          opts.AWSProfile,
		AWSRegion:           firstOf(opts.AWSRegion, opts.Region),
	}

	if svc == nil {
		req.OrgName = nonEmpty(firstOf(opts.Org, config.OrgNameFromEnv()))
		req.AppName = nonEmpty(opts.App)
		req.StageName = nonEmpty(opts.Stage)
		req.RegionName = nonEmpty(opts.Region)
		return req
	}

	orgName := firstOf(opts.Org, svc.Org, opts.ComposeOrgName, config.OrgNameFromEnv())
	appName := firstOf(opts.App, svc.App)
	serviceName := string(svc.Service)

	req.IsDashboardEnabledForService = firstOf(svc.Org, opts.ComposeOrgName) != "" && svc.App != "" && serviceName != ""
	req.AccessKeyV2 = nonEmpty(svc.LicenseKey)
	req.OrgName = nonEmpty(orgName)
	req.AppName = nonEmpty(appName)
	req.ServiceName = nonEmpty(serviceName)
	req.StageName = nonEmpty(firstOf(opts.Stage, svc.Provider.Stage, defaultStage))
	req.RegionName = nonEmpty(firstOf(opts.Region, svc.Provider.Region, defaultRegion))
	return req
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
