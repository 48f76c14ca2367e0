package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

type credentialFlags struct {
	email    string
	password string
	fullName string
}

// fill prompts for any credential not supplied by flag.
func (f *credentialFlags) fill(cmd *cobra.Command, withName bool) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	var err error
	if strings.TrimSpace(f.email) == "" {
		if f.email, err = prompt(in, out, "Email: "); err != nil {
			return err
		}
	}
	if f.password == "" {
		if f.password, err = prompt(in, out, "Password: "); err != nil {
			return err
		}
	}
	if withName && strings.TrimSpace(f.fullName) == "" {
		if f.fullName, err = prompt(in, out, "Full name: "); err != nil {
			return err
		}
	}
	if f.email == "" || f.password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	return nil
}

func (f *credentialFlags) bind(cmd *cobra.Command, withName bool) {
	cmd.Flags().StringVarP(&f.email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Account password (prompted when omitted)")
	if withName {
		cmd.Flags().StringVarP(&f.fullName, "name", "n", "", "Full name shown on your listings")
	}
}

func newSignupCmd(state *rootState) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.fill(cmd, true); err != nil {
				return err
			}
			user, err := state.app.gate.SignUp(cmd.Context(), creds.email, creds.password, creds.fullName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. You are signed in as %s.\n", displayName(user.FullName, user.Email), user.Email)
			return nil
		},
	}
	creds.bind(cmd, true)
	return cmd
}

func newLoginCmd(state *rootState) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.fill(cmd, false); err != nil {
				return err
			}
			user, err := state.app.gate.SignIn(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", user.Email)
			return nil
		},
	}
	creds.bind(cmd, false)
	return cmd
}

func newLogoutCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, signedIn := state.app.gate.CurrentUser(); !signedIn {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			err := state.app.gate.SignOut(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: remote sign out failed:", describe(err))
			}
			return nil
		},
	}
}

func newWhoamiCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := state.app.gate.Require()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", displayName(user.FullName, user.Email), user.Email)
			fmt.Fprintf(out, "user id: %s\n", user.ID)
			if expires, ok := state.app.api.SessionExpiresAt(cmd.Context()); ok && !expires.IsZero() {
				fmt.Fprintf(out, "session expires: %s\n", expires.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func displayName(fullName, email string) string {
	if name := strings.TrimSpace(fullName); name != "" {
		return name
	}
	return email
}
