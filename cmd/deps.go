package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	errUtils "github.com/serverless/sfauth/errors"
	awsCloud "github.com/serverless/sfauth/pkg/auth/cloud/aws"
	"github.com/serverless/sfauth/pkg/auth/identity"
	"github.com/serverless/sfauth/pkg/auth/rc"
	"github.com/serverless/sfauth/pkg/config"
	"github.com/serverless/sfauth/pkg/dashboard"
	"github.com/serverless/sfauth/pkg/ui/prompt"
	"github.com/serverless/sfauth/pkg/version"
)

// loadSettings resolves settings from the environment, with the --logs-level flag taking precedence.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	v := viper.New()
	if flag := cmd.Flag(logsLevelFlag); flag != nil {
		if err := v.BindPFlag("logs_level", flag); err != nil {
			return nil, errUtils.Build(err).WithSentinel(errUtils.ErrInvalidConfigValue).Err()
		}
	}
	return config.LoadWith(v)
}

// services are the collaborators of one command invocation.
type services struct {
	settings *config.Settings
	prompter prompt.Prompter
	resolver *identity.Resolver
}

func newServices(cmd *cobra.Command) (*services, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	prompter := prompt.NewHuhPrompter(prompt.WithOutput(cmd.ErrOrStderr()))
	store := rc.NewStore(settings.RCFileName())
	client := dashboard.NewHTTPClient(settings.CoreURL, dashboard.WithVersion(version.Version))

	resolver := identity.NewResolver(store, client, prompter,
		identity.WithSettings(settings),
		identity.WithLoginBroker(dashboard.NewWebSocketBroker(settings.CoreURL, settings.DashboardURL)),
		identity.WithLicenseKeySource(awsCloud.NewLicenseKeyFetcher(nil)),
		identity.WithOutput(cmd.ErrOrStderr()),
	)

	return &services{
		settings: settings,
		prompter: prompter,
		resolver: resolver,
	}, nil
}
