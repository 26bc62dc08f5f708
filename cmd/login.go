package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, false)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringP("username", "u", "", "Account username")
		c.Flags().StringP("password", "p", "", "Account password (default $SIMILR_PASSWORD)")
		_ = c.MarkFlagRequired("username")
	}
}

func authenticate(cmd *cobra.Command, signup bool) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("SIMILR_PASSWORD")
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if signup {
		err = rt.session.Signup(cmd.Context(), rt.client, username, password)
	} else {
		err = rt.session.Login(cmd.Context(), rt.client, username, password)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", rt.session.Session().Username)
	return nil
}
