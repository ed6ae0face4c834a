package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/antoniolg/agent-kit/internal/services/youtube"
	"github.com/antoniolg/agent-kit/internal/utils"
)

var (
	authClientSecret string
	authToken        string
	authCallbackPort int
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize YouTube access and cache the token",
	Long: `Run the credential flow without publishing anything: reuse a valid
token, refresh an expired one, or ask for consent and store the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := authClientSecret
		if secret == "" {
			secret = cfg.YouTube.ClientSecret
		}
		secret, err := utils.ExpandHomeDir(secret)
		if err != nil {
			return err
		}
		if err := utils.RequireFile("client-secret", secret); err != nil {
			return err
		}

		token := authToken
		if token == "" {
			token = cfg.YouTube.TokenPath
		}
		port := cfg.YouTube.AuthCallbackPort
		if cmd.Flags().Changed("callback-port") {
			port = authCallbackPort
		}

		auth, err := youtube.NewAuthenticator(youtube.AuthOptions{
			ClientSecretPath: secret,
			TokenPath:        token,
			CallbackPort:     port,
			In:               os.Stdin,
			Out:              os.Stdout,
		})
		if err != nil {
			return err
		}
		if _, err := auth.Token(cmd.Context()); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
		utils.LogSuccess("YouTube access authorized (token cache: %s)", token)
		return nil
	},
}

func init() {
	authCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "OAuth client secret JSON (default: YOUTUBE_CLIENT_SECRET or config)")
	authCmd.Flags().StringVar(&authToken, "token", "", "Token cache path (default from config)")
	authCmd.Flags().IntVar(&authCallbackPort, "callback-port", 0, "Receive the redirect on this local port instead of pasting it")
	rootCmd.AddCommand(authCmd)
}
