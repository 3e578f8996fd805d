package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/serverless/sfauth/pkg/auth/identity"
	"github.com/serverless/sfauth/pkg/service"
)

type whoamiOptions struct {
	identity.Options
	configPath string
}

// whoamiOutput is what whoami prints. It never carries keys or tokens.
type whoamiOutput struct {
	Method              string  `json:"method"`
	OrgName             *string `json:"orgName"`
	OrgID               *string `json:"orgId"`
	UserID              *string `json:"userId,omitempty"`
	UserName            *string `json:"userName,omitempty"`
	UserEmail           *string `json:"userEmail,omitempty"`
	LicenseKeyLabel     *string `json:"licenseKeyLabel,omitempty"`
	DashboardEnabled    bool    `json:"dashboardEnabled"`
	ServiceAppID        *string `json:"serviceAppId,omitempty"`
	LoggedInInteractive bool    `json:"loggedInInteractively"`
}

func newWhoamiCmd() *cobra.Command {
	var opts whoamiOptions

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity commands run as",
		Long:  "Resolves credentials the same way other commands do and prints the org and user without any secrets.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadServiceConfig(opts.configPath)
			if err != nil {
				return err
			}
			data, err := svc.resolver.Authenticate(cmd.Context(), cfg, opts.Options)
			if err != nil {
				return err
			}
			if err := printWhoami(cmd.OutOrStdout(), data); err != nil {
				return err
			}
			svc.resolver.ShowNotifications(data)
			return nil
		},
	}

	whoamiCmd.Flags().StringVar(&opts.Org, "org", "", "Org name")
	whoamiCmd.Flags().StringVar(&opts.App, "app", "", "App name")
	whoamiCmd.Flags().StringVar(&opts.Stage, "stage", "", "Stage (defaults to provider.stage or dev)")
	whoamiCmd.Flags().StringVar(&opts.Region, "region", "", "Region (defaults to provider.region or us-east-1)")
	whoamiCmd.Flags().StringVar(&opts.AWSProfile, "aws-profile", "", "AWS profile used to read a License Key from SSM")
	whoamiCmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the service configuration file")
	return whoamiCmd
}

// loadServiceConfig reads path, or looks for a service file in the working directory when path is empty.
func loadServiceConfig(path string) (*service.Config, error) {
	if path != "" {
		return service.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return service.Find(wd)
}

func newWhoamiOutput(data *identity.AuthenticatedData) whoamiOutput {
	method := "licenseKey"
	if data.AccessKeyV1 != nil {
		method = "accessKey"
	}
	return whoamiOutput{
		Method:              method,
		OrgName:             data.OrgName,
		OrgID:               data.OrgID,
		UserID:              data.UserID,
		UserName:            data.UserName,
		UserEmail:           data.UserEmail,
		LicenseKeyLabel:     data.AccessKeyV2Label,
		DashboardEnabled:    data.Dashboard.IsEnabledForService,
		ServiceAppID:        data.Dashboard.ServiceAppID,
		LoggedInInteractive: data.Dashboard.RequiredAuthentication,
	}
}

func printWhoami(w io.Writer, data *identity.AuthenticatedData) error {
	out, err := json.MarshalIndent(newWhoamiOutput(data), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
