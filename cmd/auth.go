package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/ticktick-mcp/internal/auth"
)

func newAuthCmd() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		redirectURI  string
		region       string
		tokenFile    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage TickTick authentication",
		Long: `Manage the TickTick OAuth session used by the MCP server.

The login flow prints an authorization URL to open in a browser. After
granting access, paste the authorization code from the redirect back
into the terminal. The resulting token is stored on disk and refreshed
automatically by the server.`,
	}

	cmd.PersistentFlags().StringVar(&clientID, "client-id", "", "TickTick OAuth client ID. Can also use TICKTICK_CLIENT_ID env var.")
	cmd.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "TickTick OAuth client secret. Can also use TICKTICK_CLIENT_SECRET env var.")
	cmd.PersistentFlags().StringVar(&redirectURI, "redirect-uri", "", "OAuth redirect URI registered with the application. Can also use TICKTICK_REDIRECT_URI env var.")
	cmd.PersistentFlags().StringVar(&region, "region", "", "API region: global (ticktick.com) or china (dida365.com). Can also use TICKTICK_REGION env var.")
	cmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Token file location. Can also use TICKTICK_TOKEN_FILE env var.")

	newManager := func() (*auth.Manager, error) {
		cfg, err := resolveOAuthConfig(clientID, clientSecret, redirectURI, region, tokenFile)
		if err != nil {
			return nil, err
		}
		return auth.NewManager(cfg), nil
	}

	cmd.AddCommand(newAuthLoginCmd(newManager))
	cmd.AddCommand(newAuthStatusCmd(newManager))
	cmd.AddCommand(newAuthLogoutCmd(newManager))

	return cmd
}

func newAuthLoginCmd(newManager func() (*auth.Manager, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the OAuth authorization flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			url, _, err := manager.AuthorizationURL(nil, "")
			if err != nil {
				return fmt.Errorf("failed to build authorization URL: %w", err)
			}

			fmt.Println("Open this URL in your browser and grant access:")
			fmt.Println()
			fmt.Printf("  %s\n", url)
			fmt.Println()
			fmt.Print("Paste the authorization code from the redirect: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			tokens, err := manager.ExchangeCode(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}

			stored, err := manager.StoreToken(tokens)
			if err != nil {
				return fmt.Errorf("failed to persist token: %w", err)
			}

			fmt.Printf("Authentication successful. Access token valid until %s.\n",
				stored.ExpiryTime().Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}

func newAuthStatusCmd(newManager func() (*auth.Manager, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			status, err := manager.AuthStatus()
			if err != nil {
				return fmt.Errorf("failed to read authentication status: %w", err)
			}

			out, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
}

func newAuthLogoutCmd(newManager func() (*auth.Manager, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			if err := manager.ClearToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			fmt.Println("Logged out. The stored token has been cleared.")
			return nil
		},
	}
}
