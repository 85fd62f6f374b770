package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"yowa/access"
	"yowa/client"
	"yowa/validators"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		email := loginEmail
		password := loginPassword
		if email == "" {
			email = prompt("Email: ")
		}
		if password == "" {
			password = prompt("Password: ")
		}

		if errs := validators.Credentials(email, password); len(errs) > 0 {
			return fieldError(errs)
		}

		auth, err := a.api.Login(cmd.Context(), email, password)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Kind == client.KindUnauthorized {
				return errors.New("invalid email or password")
			}
			return err
		}

		if err := a.store.Login(auth.Token, auth.User); err != nil {
			return fmt.Errorf("persisting session: %w", err)
		}

		fmt.Printf("Signed in as %s (%s)\n", auth.User.Name, auth.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.authorize(access.Authenticated()); err != nil {
			return err
		}

		st := a.store.Current()
		fmt.Printf("%s <%s> (%s)\n", st.Identity.Name, st.Identity.Email, st.Identity.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func fieldError(errs map[string]string) error {
	parts := make([]string, 0, len(errs))
	for field, msg := range errs {
		parts = append(parts, field+": "+msg)
	}
	return errors.New(strings.Join(parts, "; "))
}
