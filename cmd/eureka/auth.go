package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eureka/pkg/realtime/api"
	"eureka/pkg/realtime/wire"
)

func signupCmd(flags *globalFlags) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := api.New(flags.server)
			resp, err := client.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			return signedInAs(cmd, flags, resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func loginCmd(flags *globalFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := api.New(flags.server)
			resp, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return signedInAs(cmd, flags, resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token and forget it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := signedIn(flags)
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := removeCredentials(flags.credentials); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func signedInAs(cmd *cobra.Command, flags *globalFlags, resp wire.AuthResponse) error {
	err := saveCredentials(flags.credentials, credentials{Server: flags.server, Token: resp.Token, User: resp.User})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (@%s)\n", resp.User.Name, resp.User.Handle)
	return nil
}
