// Package rc reads and updates the .serverlessrc file that holds user sessions and license keys.
package rc

import (
	"encoding/json"
	"sort"
)

// Config is the merged view of the global and local rc files.
type Config struct {
	UserID             *string                 `json:"userId"`
	FrameworkID        string                  `json:"frameworkId"`
	TrackingDisabled   bool                    `json:"trackingDisabled"`
	EnterpriseDisabled bool                    `json:"enterpriseDisabled"`
	Meta               Meta                    `json:"meta"`
	Users              map[string]*UserSession `json:"users"`
	AccessKeys         AccessKeys              `json:"accessKeys"`
	Notifications      map[string]Notification `json:"notifications"`
}

// Meta records when the file was created and last written, in unix seconds.
type Meta struct {
	CreatedAt *int64 `json:"created_at"`
	UpdatedAt *int64 `json:"updated_at"`
}

// UserSession is a dashboard user logged in through the browser.
type UserSession struct {
	UserID         string           `json:"userId,omitempty"`
	Username       string           `json:"username,omitempty"`
	Name           string           `json:"name,omitempty"`
	Email          string           `json:"email,omitempty"`
	DefaultOrgName string           `json:"defaultOrgName,omitempty"`
	Dashboard      DashboardSession `json:"dashboard"`
}

// DashboardSession holds the tokens of a user session and the access keys minted per org.
type DashboardSession struct {
	IDToken      string            `json:"idToken,omitempty"`
	AccessToken  string            `json:"accessToken,omitempty"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	ExpiresAt    json.RawMessage   `json:"expiresAt,omitempty"`
	AccessKeys   map[string]string `json:"accessKeys,omitempty"`
}

// AccessKeys holds the license keys, one per org.
type AccessKeys struct {
	Orgs           map[string]*LicenseOrg `json:"orgs"`
	DefaultOrgName *string                `json:"defaultOrgName"`
}

// LicenseOrg is a license key saved for an org.
type LicenseOrg struct {
	AccessKey        string `json:"accessKey"`
	AccessKeyV2Label string `json:"accessKeyV2Label,omitempty"`
	OrgName          string `json:"orgName"`
	OrgID            string `json:"orgId"`
}

// Notification tracks when a notification was last displayed.
type Notification struct {
	LastShown string `json:"lastShown,omitempty"`
}

// CurrentUser returns the active user session, or nil when nobody is logged in.
func (c *Config) CurrentUser() *UserSession {
	if c.UserID == nil || *c.UserID == "" {
		return nil
	}
	user := c.Users[*c.UserID]
	if user == nil {
		user = &UserSession{}
	}
	// Older files omit userId inside the session.
	user.UserID = *c.UserID
	return user
}

// HasLicenseOrgs reports whether any license key is saved.
func (c *Config) HasLicenseOrgs() bool {
	return len(c.AccessKeys.Orgs) > 0
}

// LicenseOrgNames returns the orgs that have a license key, sorted.
func (c *Config) LicenseOrgNames() []string {
	names := make([]string, 0, len(c.AccessKeys.Orgs))
	for name := range c.AccessKeys.Orgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultLicenseOrg returns the default license org name, or "".
func (c *Config) DefaultLicenseOrg() string {
	if c.AccessKeys.DefaultOrgName == nil {
		return ""
	}
	return *c.AccessKeys.DefaultOrgName
}

func (c *Config) normalize() {
	if c.Users == nil {
		c.Users = map[string]*UserSession{}
	}
	if c.AccessKeys.Orgs == nil {
		c.AccessKeys.Orgs = map[string]*LicenseOrg{}
	}
	if c.Notifications == nil {
		c.Notifications = map[string]Notification{}
	}
}
