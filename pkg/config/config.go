package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	errUtils "github.com/serverless/sfauth/errors"
)

const (
	// StageProd is the production platform stage.
	StageProd = "prod"

	prodCoreURL      = "https://api.serverless.com"
	devCoreURL       = "https://api.serverless-dev.com"
	prodDashboardURL = "https://app.serverless.com"
	devDashboardURL  = "https://app.serverless-dev.com"

	defaultRCBaseName = "serverless"
)

// Settings holds the runtime configuration resolved from flags and environment variables.
type Settings struct {
	PlatformStage string `mapstructure:"platform_stage"`
	CoreURL       string `mapstructure:"core_url"`
	DashboardURL  string `mapstructure:"dashboard_url"`
	RCBaseName    string `mapstructure:"rc_base_name"`
	LogLevel      string `mapstructure:"logs_level"`
}

// IsProd reports whether the production platform is targeted.
func (s *Settings) IsProd() bool {
	return s.PlatformStage == StageProd
}

// RCFileName returns the rc file name for the platform stage, e.g. ".serverlessrc" or ".serverlessdevrc".
func (s *Settings) RCFileName() string {
	if s.IsProd() {
		return fmt.Sprintf(".%src", s.RCBaseName)
	}
	return fmt.Sprintf(".%s%src", s.RCBaseName, strings.ToLower(s.PlatformStage))
}

// BillingURL is the dashboard page where licenses are purchased.
func (s *Settings) BillingURL() string {
	return s.DashboardURL + "/settings/billing"
}

// Load resolves settings from the environment.
func Load() (*Settings, error) {
	return LoadWith(viper.New())
}

// LoadWith resolves settings using the given viper instance so callers can bind flags first.
func LoadWith(v *viper.Viper) (*Settings, error) {
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrInvalidConfigValue, err)
	}

	s.PlatformStage = strings.TrimSpace(s.PlatformStage)
	if s.PlatformStage == "" {
		s.PlatformStage = StageProd
	}
	if s.CoreURL == "" {
		s.CoreURL = lo.Ternary(s.IsProd(), prodCoreURL, devCoreURL)
	}
	if s.DashboardURL == "" {
		s.DashboardURL = lo.Ternary(s.IsProd(), prodDashboardURL, devDashboardURL)
	}
	s.CoreURL = strings.TrimRight(s.CoreURL, "/")
	s.DashboardURL = strings.TrimRight(s.DashboardURL, "/")
	if s.RCBaseName == "" {
		s.RCBaseName = defaultRCBaseName
	}

	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform_stage", StageProd)
	v.SetDefault("core_url", "")
	v.SetDefault("dashboard_url", "")
	v.SetDefault("rc_base_name", defaultRCBaseName)
	v.SetDefault("logs_level", "Warning")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"platform_stage": "SERVERLESS_PLATFORM_STAGE",
		"core_url":       "SFAUTH_CORE_URL",
		"dashboard_url":  "SFAUTH_DASHBOARD_URL",
		"logs_level":     "SFAUTH_LOGS_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("%w: binding %s: %w", errUtils.ErrInvalidConfigValue, key, err)
		}
	}
	return nil
}

// AccessKeyV1FromEnv returns the access key from SERVERLESS_ACCESS_KEY or SERVERLESS_USER_ACCESS_KEY.
func AccessKeyV1FromEnv() string {
	return firstEnv("SERVERLESS_ACCESS_KEY", "SERVERLESS_USER_ACCESS_KEY")
}

// AccessKeyV2FromEnv returns the license key from SERVERLESS_LICENSE_KEY or SERVERLESS_ORG_ACCESS_KEY.
func AccessKeyV2FromEnv() string {
	return firstEnv("SERVERLESS_LICENSE_KEY", "SERVERLESS_ORG_ACCESS_KEY")
}

// OrgNameFromEnv returns SERVERLESS_ORG_NAME.
func OrgNameFromEnv() string {
	return os.Getenv("SERVERLESS_ORG_NAME")
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}
