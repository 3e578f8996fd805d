package cmd

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the user session or delete a saved License Key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}
			if err := svc.resolver.Unauthenticate(cmd.Context()); err != nil {
				return err
			}
			svc.prompter.Success("Logged out.")
			return nil
		},
	}
}
