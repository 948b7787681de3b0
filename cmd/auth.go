package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gmailmcp/internal/config"
	"github.com/teemow/gmailmcp/internal/google"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
)

// keyringFileKey unlocks the encrypted file backend when no system keyring
// exists and GMAILMCP_KEYRING_PASSWORD is unset.
const keyringFileKey = "gmailmcp-file-key"

// newTokenStore opens the store selected by token_store.
func newTokenStore(cfg *config.Config) (google.TokenStore, error) {
	switch cfg.TokenStore {
	case config.TokenStoreKeyring:
		password := os.Getenv("GMAILMCP_KEYRING_PASSWORD")
		if password == "" {
			password = keyringFileKey
		}
		dir := cfg.TokenDir
		if dir == "" {
			dir = google.DefaultTokenDir()
		}
		ring, err := google.OpenKeyring(dir, password)
		if err != nil {
			return nil, err
		}
		return google.NewKeyringTokenStore(ring), nil
	default:
		return google.NewFileTokenStore(cfg.TokenDir), nil
	}
}

// newAuthenticator loads the OAuth client secret and opens the token store.
// Read-only servers request the read-only Gmail scope.
func newAuthenticator(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*google.Authenticator, error) {
	scopes := google.GmailScopes
	if cfg.ReadOnly {
		scopes = google.ReadOnlyScopes
	}
	oauthConfig, err := google.LoadConfig(cfg.CredentialsPath, scopes...)
	if err != nil {
		return nil, err
	}
	store, err := newTokenStore(cfg)
	if err != nil {
		return nil, err
	}
	return google.NewAuthenticator(oauthConfig, store,
		google.WithAuthLogger(logger),
		google.WithAuthMetrics(metrics)), nil
}

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google account authorization",
		Long: `Authorize gmailmcp to access a Gmail account without a browser on the
server:

  1. gmailmcp auth url --account work
  2. open the printed URL, grant access and copy the code (or the whole
     URL the browser was redirected to)
  3. gmailmcp auth login --account work <code-or-redirect-url>

Tokens are stored per account and refreshed automatically.`,
	}
	cmd.PersistentFlags().StringVar(&account, "account", server.DefaultAccount, "Account name")
	cmd.PersistentFlags().String("credentials", "", "OAuth client secret file (overrides credentials_path)")
	cmd.PersistentFlags().String("token-dir", "", "Token directory (overrides token_dir)")
	cmd.PersistentFlags().String("token-store", "", "Token store: file or keyring (overrides token_store)")

	authenticator := func(cmd *cobra.Command) (*google.Authenticator, error) {
		if err := google.ValidateAccountName(account); err != nil {
			return nil, err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		return newAuthenticator(cfg, slog.Default(), nil)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "url",
		Short: "Print the consent URL for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := authenticator(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in your browser and grant access:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, auth.AuthCodeURL(account))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Then run: gmailmcp auth login --account %s <code-or-redirect-url>\n", account)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "login <code-or-redirect-url>",
		Short: "Exchange an authorization code and store the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := authenticator(cmd)
			if err != nil {
				return err
			}
			if err := auth.Exchange(cmd.Context(), account, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q authorized\n", account)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether an account has a stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := authenticator(cmd)
			if err != nil {
				return err
			}
			state := "not authorized"
			if auth.HasToken(account) {
				state = "authorized"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q: %s\n", account, state)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := authenticator(cmd)
			if err != nil {
				return err
			}
			if err := auth.Revoke(account); err != nil {
				if errors.Is(err, google.ErrTokenNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "Account %q was not authorized\n", account)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q logged out\n", account)
			return nil
		},
	})

	return cmd
}
