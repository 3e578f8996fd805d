package cmd

import (
	charm "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

const logsLevelFlag = "logs-level"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sfauth",
		Short: "Authenticate with Serverless Framework and AWS",
		Long:  `Log in with a Serverless Framework account or License Key, and sign in to AWS through the console or IAM Identity Center.`,

		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd)
		},
	}

	root.PersistentFlags().String(logsLevelFlag, "", "Log level: Trace, Debug, Info, Warning or Off")

	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newWhoamiCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(cmd *cobra.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	level, err := log.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	errUtils.SetVerbose(level < charm.InfoLevel)
	return nil
}
