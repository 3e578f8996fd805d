// Package identity decides who is running the CLI: an access key, a license key, a cached user
// session, or a fresh interactive login, and returns the resolved org context.
package identity

import (
	"encoding/json"
	"strings"
)

const (
	defaultStage  = "dev"
	defaultRegion = "us-east-1"
)

// AuthenticatedData is the result of a resolution. Fields a branch does not fill stay nil.
type AuthenticatedData struct {
	AccessKeyV1      *string           `json:"accessKeyV1"`
	AccessKeyV2      *string           `json:"accessKeyV2"`
	AccessKeyV2Label *string           `json:"accessKeyV2Label,omitempty"`
	OrgID            *string           `json:"orgId"`
	OrgName          *string           `json:"orgName"`
	UserID           *string           `json:"userId"`
	UserName         *string           `json:"userName,omitempty"`
	UserEmail        *string           `json:"userEmail,omitempty"`
	Subscription     json.RawMessage   `json:"subscription,omitempty"`
	Notifications    []json.RawMessage `json:"notifications,omitempty"`
	Dashboard        DashboardData     `json:"dashboard"`
}

// DashboardData carries dashboard state for the service being run.
type DashboardData struct {
	IsEnabledForService          bool            `json:"isEnabledForService"`
	RequiredAuthentication       bool            `json:"requiredAuthentication"`
	OrgFeaturesInUse             json.RawMessage `json:"orgFeaturesInUse,omitempty"`
	OrgObservabilityIntegrations json.RawMessage `json:"orgObservabilityIntegrations,omitempty"`
	ServiceAppID                 *string         `json:"serviceAppId,omitempty"`
	ServiceProvider              json.RawMessage `json:"serviceProvider,omitempty"`
	InstanceParameters           json.RawMessage `json:"instanceParameters,omitempty"`
}

// Request holds the hints a caller has about the current invocation.
type Request struct {
	AccessKeyV1 *string
	AccessKeyV2 *string
	OrgName     *string
	AppName     *string
	ServiceName *string
	StageName   *string
	RegionName  *string

	IsDashboardEnabledForService bool
	// AuthenticateMessage replaces the default prompt shown when a login is required.
	AuthenticateMessage string

	// AWSProfile and AWSRegion are used for the SSM license key lookup.
	AWSProfile string
	AWSRegion  string
}

// AuthResult describes what an interactive authentication produced.
type AuthResult struct {
	OrgID     string
	OrgName   string
	IsDefault bool
}

// normalized is a Request after trimming and defaulting.
type normalized struct {
	accessKeyV1 *string
	accessKeyV2 *string
	orgName     *string
	appName     *string
	serviceName *string
	stageName   string
	regionName  string
}

func normalize(req Request) normalized {
	return normalized{
		accessKeyV1: optionalString(req.AccessKeyV1),
		accessKeyV2: optionalString(req.AccessKeyV2),
		orgName:     optionalString(req.OrgName),
		appName:     optionalString(req.AppName),
		serviceName: optionalString(req.ServiceName),
		stageName:   stringOr(req.StageName, defaultStage),
		regionName:  stringOr(req.RegionName, defaultRegion),
	}
}

// optionalString trims s and maps empty values to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringOr(s *string, fallback string) string {
	if v := optionalString(s); v != nil {
		return *v
	}
	return fallback
}

// nonEmpty returns a pointer to s, or nil when s is empty.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (in normalized) clientDataRequest(key string, licenseKeyUsed bool) ClientDataRequest {
	return ClientDataRequest{
		Key:            key,
		AppName:        in.appName,
		ServiceName:    in.serviceName,
		StageName:      in.stageName,
		RegionName:     in.regionName,
		LicenseKeyUsed: licenseKeyUsed,
	}
}
