package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	errUtils "github.com/serverless/sfauth/errors"
	awsCloud "github.com/serverless/sfauth/pkg/auth/cloud/aws"
	awsIdentity "github.com/serverless/sfauth/pkg/aws/identity"
	log "github.com/serverless/sfauth/pkg/logger"
)

const loginMessage = "Please login/register or enter your license key:"

func newLoginCmd() *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Serverless Framework or add a License Key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}
			result, err := svc.resolver.AuthenticateInteractive(cmd.Context(), loginMessage)
			if err != nil {
				return err
			}
			log.Debug("Login complete", "org", result.OrgName, "default", result.IsDefault)
			return nil
		},
	}

	loginCmd.AddCommand(newLoginAWSCmd())
	return loginCmd
}

func newLoginAWSCmd() *cobra.Command {
	var (
		profile string
		region  string
		verify  bool
	)

	awsCmd := &cobra.Command{
		Use:   "aws",
		Short: "Sign in to AWS through the browser and cache console credentials",
		Long: `Opens the AWS sign-in page, caches the temporary credentials under ~/.aws/login/cache
and points the profile at the new session with login_session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}

			lc := awsCloud.NewLoginContext(svc.prompter)
			lc.Out = cmd.ErrOrStderr()
			result, err := awsCloud.NewConsoleLogin(lc).Login(cmd.Context(), awsCloud.ConsoleLoginOptions{
				Profile: profile,
				Region:  region,
			})
			if err != nil {
				return err
			}
			if !verify {
				return nil
			}

			var cache awsCloud.ConsoleTokenCache
			found, err := awsCloud.ReadCacheFile(result.CacheFile, &cache)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", errUtils.ErrCredentialVerification, result.CacheFile)
			}
			caller, err := awsIdentity.VerifyConsoleSession(cmd.Context(), awsIdentity.NewGetter(nil), &cache, awsCloud.ResolveLoginRegion(region))
			if err != nil {
				return err
			}
			svc.prompter.Success(fmt.Sprintf("Verified AWS credentials for %s", caller.Arn))
			return nil
		},
	}

	awsCmd.Flags().StringVar(&profile, "aws-profile", "", "AWS profile to update (defaults to default)")
	awsCmd.Flags().StringVar(&region, "region", "", "AWS region of the sign-in endpoint")
	awsCmd.Flags().BoolVar(&verify, "verify", false, "Call STS with the new credentials after login")

	awsCmd.AddCommand(newLoginSSOCmd())
	return awsCmd
}

func newLoginSSOCmd() *cobra.Command {
	var (
		profile    string
		ssoSession string
	)

	ssoCmd := &cobra.Command{
		Use:   "sso",
		Short: "Sign in to AWS IAM Identity Center and cache the SSO token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}

			lc := awsCloud.NewLoginContext(svc.prompter)
			lc.Out = cmd.ErrOrStderr()
			result, err := awsCloud.NewSSOLogin(lc).Login(cmd.Context(), awsCloud.SSOLoginOptions{
				Profile:    profile,
				SSOSession: ssoSession,
			})
			if err != nil {
				return err
			}
			log.Debug("SSO token cached", "session", result.SessionName, "file", result.TokenFile)
			return nil
		},
	}

	ssoCmd.Flags().StringVar(&profile, "aws-profile", "", "AWS profile whose SSO configuration is used (defaults to default)")
	ssoCmd.Flags().StringVar(&ssoSession, "sso-session", "", "sso-session section to log in with")
	return ssoCmd
}
