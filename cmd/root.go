// Package cmd holds the console commands. Every authenticated command goes
// through the access gate before touching the remote store.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"yowa/access"
	"yowa/client"
	"yowa/config"
	"yowa/logger"
	"yowa/session"
)

var rootCmd = &cobra.Command{
	Use:           "yowa",
	Short:         "Authoring console for the yowa course marketplace",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the console.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(serveCmd)
}

// app bundles the pieces every command needs.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *session.Store
	api   *client.Client
}

// newApp loads config, opens the session store and restores the persisted
// session before any command logic runs.
func newApp() (*app, error) {
	config.LoadConfig()
	cfg := config.AppConfig

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log := logger.New(level)

	store, err := session.Open(cfg.StateDir, log)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	store.Restore()

	api := client.New(cfg.APIBaseURL, time.Duration(cfg.HTTPTimeoutSec)*time.Second, store.Token, log)

	return &app{cfg: cfg, log: log, store: store, api: api}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing session store")
	}
}

// authorize maps gate decisions onto command-line outcomes: a redirect
// becomes a sign-in hint, a role mismatch a plain refusal.
func (a *app) authorize(req access.Requirement) error {
	d := access.Authorize(a.store.Current(), req)
	switch d.Verdict {
	case access.Allow:
		return nil
	case access.Redirect:
		return errors.New("you are not signed in; run \"yowa login\" first")
	case access.Forbidden:
		return errors.New("your account does not have permission to use this command")
	default:
		return errors.New("session is still restoring, try again")
	}
}

// forceSignOutOnAuthError clears a session the server no longer accepts.
func (a *app) forceSignOutOnAuthError(err error) error {
	if client.IsUnauthorized(err) {
		_ = a.store.Logout()
		return errors.New("your session has expired; run \"yowa login\" again")
	}
	return err
}
