package main

import (
	"fmt"

	"rezepte/internal/session"

	"github.com/spf13/cobra"
)

// newSessionCmd writes the session file the way the external login flow does.
func (a *app) newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or write the session file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.Load(a.cfg.Session.File)
			if err != nil {
				return err
			}
			if sess.Mode() != session.ModeAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "anonym")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "eingeloggt als %s (#%d)\n", sess.Username, sess.UserID)
			return nil
		},
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Write a logged-in session for --user-id/--username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.userID <= 0 {
				return fmt.Errorf("--user-id is required")
			}
			if err := session.Save(a.cfg.Session.File, session.LoggedIn(a.userID, a.username)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "eingeloggt als %s (#%d)\n", a.username, a.userID)
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Clear(a.cfg.Session.File); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ausgeloggt")
			return nil
		},
	}

	cmd.AddCommand(login, logout)
	return cmd
}
