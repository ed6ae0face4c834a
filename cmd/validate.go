package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/utils"
	"github.com/antoniolg/agent-kit/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment setup",
	Long:  `Check that ffmpeg, ffprobe, listmonk and postiz are installed and that the config has what publishing needs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.LogInfo("Validating environment...")

		if err := validator.ValidateExternalTools(cmd.Context(), runner.New(), cfg); err != nil {
			return fmt.Errorf("external tools validation failed: %w", err)
		}
		utils.LogSuccess("External tools: OK")

		if err := validator.ValidateConfig(cfg); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		utils.LogSuccess("Configuration: OK")

		utils.LogSuccess("Environment validation completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
