package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/modules/compose"
	"github.com/antoniolg/agent-kit/internal/modules/draft"
	"github.com/antoniolg/agent-kit/internal/modules/newsletter"
	"github.com/antoniolg/agent-kit/internal/modules/publish"
	"github.com/antoniolg/agent-kit/internal/modules/socials"
	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/services/alerts"
	"github.com/antoniolg/agent-kit/internal/services/youtube"
	"github.com/antoniolg/agent-kit/internal/utils"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
	// configPath points at the YAML, TOML or JSON config file
	configPath string

	cfg      *config.Config
	registry *mod.ModuleRegistry
)

var rootCmd = &cobra.Command{
	Use:   "agent-kit",
	Short: "Release pipeline for finished videos",
	Long: `agent-kit pushes a finished video through the release pipeline:
compose a native cover video, upload or update it on YouTube, then schedule
the newsletter and the social posts that point to it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.SetLogLevel(utils.LogLevelFromString(verbosityLevel))

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		registry, err = newRegistry(cfg, runner.New(), youtube.Connect)
		return err
	},
}

// newRegistry wires every pipeline module with its collaborators
func newRegistry(cfg *config.Config, r runner.Runner, connect youtube.ConnectFunc) (*mod.ModuleRegistry, error) {
	notifier, err := alerts.NewSNSNotifier(cfg.Alerts.SNSTopicARN, cfg.Alerts.Region)
	if err != nil {
		utils.LogWarning("Release alerts disabled: %v", err)
		notifier = alerts.Nop{}
	}

	publisher := publish.New(cfg, connect, notifier)
	reg := mod.NewModuleRegistry()
	for _, m := range []mod.Module{
		compose.New(r),
		publisher,
		draft.New(publisher),
		newsletter.New(cfg, r),
		socials.New(cfg, r),
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// runModule validates and executes a module with the flags collected by a command
func runModule(cmd *cobra.Command, name string, params map[string]interface{}) error {
	result, err := registry.Run(cmd.Context(), name, params)
	if err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	for key, value := range result.Outputs {
		utils.LogDebug("%s output %s=%s", name, key, value)
	}
	return nil
}

// setIfChanged copies an optional flag into params only when the user set it
func setIfChanged(cmd *cobra.Command, params map[string]interface{}, flag, key string, value interface{}) {
	if cmd.Flags().Changed(flag) {
		params[key] = value
	}
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Initialize global flags
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath,
		"Path to the config file (.yaml, .toml or .json)")
}
