package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVERLESS_PLATFORM_STAGE", "")
	t.Setenv("SFAUTH_CORE_URL", "")
	t.Setenv("SFAUTH_DASHBOARD_URL", "")
	t.Setenv("SFAUTH_LOGS_LEVEL", "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StageProd, s.PlatformStage)
	assert.True(t, s.IsProd())
	assert.Equal(t, "https://api.serverless.com", s.CoreURL)
	assert.Equal(t, "https://app.serverless.com", s.DashboardURL)
	assert.Equal(t, ".serverlessrc", s.RCFileName())
	assert.Equal(t, "https://app.serverless.com/settings/billing", s.BillingURL())
}

func TestLoad_DevStage(t *testing.T) {
	t.Setenv("SERVERLESS_PLATFORM_STAGE", "Dev")

	s, err := Load()
	require.NoError(t, err)

	assert.False(t, s.IsProd())
	assert.Equal(t, "https://api.serverless-dev.com", s.CoreURL)
	assert.Equal(t, "https://app.serverless-dev.com", s.DashboardURL)
	assert.Equal(t, ".serverlessdevrc", s.RCFileName())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVERLESS_PLATFORM_STAGE", "prod")
	t.Setenv("SFAUTH_CORE_URL", "http://127.0.0.1:9999/")
	t.Setenv("SFAUTH_LOGS_LEVEL", "Debug")

	v := viper.New()
	v.Set("dashboard_url", "http://localhost:3000")

	s, err := LoadWith(v)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9999", s.CoreURL)
	assert.Equal(t, "http://localhost:3000", s.DashboardURL)
	assert.Equal(t, "Debug", s.LogLevel)
}

func TestKeysFromEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		wantV1 string
		wantV2 string
	}{
		{
			name:   "primary names",
			env:    map[string]string{"SERVERLESS_ACCESS_KEY": "v1", "SERVERLESS_LICENSE_KEY": "v2"},
			wantV1: "v1",
			wantV2: "v2",
		},
		{
			name:   "legacy names",
			env:    map[string]string{"SERVERLESS_USER_ACCESS_KEY": "user", "SERVERLESS_ORG_ACCESS_KEY": "org"},
			wantV1: "user",
			wantV2: "org",
		},
		{
			name:   "primary wins",
			env:    map[string]string{"SERVERLESS_ACCESS_KEY": "a", "SERVERLESS_USER_ACCESS_KEY": "b"},
			wantV1: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"SERVERLESS_ACCESS_KEY", "SERVERLESS_USER_ACCESS_KEY", "SERVERLESS_LICENSE_KEY", "SERVERLESS_ORG_ACCESS_KEY"} {
				t.Setenv(name, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.wantV1, AccessKeyV1FromEnv())
			assert.Equal(t, tt.wantV2, AccessKeyV2FromEnv())
		})
	}
}

func TestOrgNameFromEnv(t *testing.T) {
	t.Setenv("SERVERLESS_ORG_NAME", "acme")
	assert.Equal(t, "acme", OrgNameFromEnv())
}
