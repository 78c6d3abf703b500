package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect and renew drive credentials",
	Long: `Inspect the cached access token, force a refresh, or trade a one-time
authorization code for a refresh token.

Examples:
  doclabel auth status
  doclabel auth refresh
  doclabel auth exchange --redirect-uri https://example.com/callback`,
	RunE: runAuthStatus,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cached access token state",
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch a fresh access token if the cached one expired",
	RunE:  runAuthRefresh,
}

var authExchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Exchange an authorization code for a refresh token",
	Long: `Exchanges a one-time authorization code for a refresh token and prints it.
Store the printed token as the refresh_token of the [oauth] section (or
ZOHO_REFRESH_TOKEN). The code is read without echo when --code is omitted.`,
	RunE: runAuthExchange,
}

// Flags for auth exchange.
var (
	authExchangeCode        string
	authExchangeRedirectURI string
)

func init() {
	authExchangeCmd.Flags().StringVar(
		&authExchangeCode, "code", "", "authorization code (prompted when omitted)")
	authExchangeCmd.Flags().StringVar(
		&authExchangeRedirectURI, "redirect-uri", "", "redirect URI registered with the client")

	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authExchangeCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	status, err := authService.Status(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("read token status: %w", err)
	}
	printTokenStatus(cmd, status)
	return nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	status, err := authService.Refresh(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	printTokenStatus(cmd, status)
	return nil
}

func runAuthExchange(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	code := authExchangeCode
	if code == "" {
		cmd.Print("Authorization code: ")
		code = readPassword()
		cmd.Println()
	}

	refresh, err := authService.Exchange(commandContext(cmd), code, authExchangeRedirectURI)
	if err != nil {
		return fmt.Errorf("exchange failed: %w", err)
	}
	cmd.Println(styles.Success.Render("Refresh token issued."))
	cmd.Printf("refresh_token = %q\n", refresh)
	return nil
}

func printTokenStatus(cmd *cobra.Command, status domain.TokenStatus) {
	switch {
	case !status.Cached:
		cmd.Println(styles.Warning.Render("No cached access token."))
	case status.Valid(time.Now()):
		cmd.Printf("%s expires %s (in %s)\n",
			styles.Success.Render("Access token valid,"),
			status.ExpiresAt.Local().Format(time.RFC3339),
			time.Until(status.ExpiresAt).Round(time.Second))
	default:
		cmd.Printf("%s at %s\n",
			styles.Warning.Render("Access token expired"),
			status.ExpiresAt.Local().Format(time.RFC3339))
	}
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
