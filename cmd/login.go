package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var cookieFile string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with web-session cookies",
		Long:  "login installs the web-session cookies from a file and exchanges them for an access token. Cookies are persisted for later invocations.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cookieFile
			if path == "" {
				path = app.cookiesPath
			}
			cookies, err := loadCookies(path)
			if err != nil {
				return err
			}

			app.session.RestoreAuthState(cmd.Context())
			if err := app.session.Authenticate(cmd.Context(), cookies); err != nil {
				return fmt.Errorf("authenticate: %w", err)
			}

			identity, err := app.library.Identity(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolve identity: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", identity.DisplayName)
			return err
		},
	}

	cmd.Flags().StringVar(&cookieFile, "cookies", "", "Path to the cookie file (defaults to the persisted session cookies)")

	return cmd
}
