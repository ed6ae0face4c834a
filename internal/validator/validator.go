// Package validator checks that the tools and settings the pipeline relies on are in place
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// ExternalTool represents an external command-line tool requirement
type ExternalTool struct {
	Name        string
	VersionArgs []string
	Validate    func(output string) bool
}

func contains(words ...string) func(string) bool {
	return func(output string) bool {
		lower := strings.ToLower(output)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
}

// RequiredTools are needed by the compositor
func RequiredTools() []ExternalTool {
	return []ExternalTool{
		{Name: "ffmpeg", VersionArgs: []string{"-version"}, Validate: contains("ffmpeg version")},
		{Name: "ffprobe", VersionArgs: []string{"-version"}, Validate: contains("ffprobe version")},
	}
}

// OptionalTools are only needed by the newsletter and social schedulers
func OptionalTools(cfg *config.Config) []ExternalTool {
	return []ExternalTool{
		{Name: cfg.Newsletter.Binary, VersionArgs: []string{"--help"}, Validate: contains("usage", "campaigns")},
		{Name: cfg.Socials.Binary, VersionArgs: []string{"--help"}, Validate: contains("usage", "posts")},
	}
}

// ValidateExternalTools fails on a missing required tool and reports optional ones
func ValidateExternalTools(ctx context.Context, r runner.Runner, cfg *config.Config) error {
	for _, tool := range RequiredTools() {
		path, err := utils.ExecLookPath(tool.Name)
		if err != nil {
			return fmt.Errorf("tool %s not found in PATH: %w", tool.Name, err)
		}
		output, err := r.Run(ctx, path, tool.VersionArgs...)
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", tool.Name, err)
		}
		if !tool.Validate(output) {
			return fmt.Errorf("invalid version of %s detected", tool.Name)
		}
		utils.LogVerbose("✓ %s found at %s", tool.Name, path)
	}

	for _, tool := range OptionalTools(cfg) {
		path, err := utils.ExecLookPath(tool.Name)
		if err != nil {
			utils.LogWarning("Optional tool %s not found: %v", tool.Name, err)
			continue
		}
		output, err := r.Run(ctx, path, tool.VersionArgs...)
		if err != nil || !tool.Validate(output) {
			utils.LogVerbose("ℹ️ Optional tool %s found but could not be verified", tool.Name)
			continue
		}
		utils.LogVerbose("✓ Optional tool %s found at %s", tool.Name, path)
	}
	return nil
}

// ValidateConfig checks settings that every publish needs; the rest are warnings
func ValidateConfig(cfg *config.Config) error {
	secret, err := utils.ExpandHomeDir(cfg.YouTube.ClientSecret)
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("no OAuth client secret configured (set youtube.client_secret or %s)", config.EnvClientSecret)
	}
	if err := utils.RequireFile("youtube.client_secret", secret); err != nil {
		return err
	}
	utils.LogVerbose("✓ client secret at %s", secret)

	if cfg.Newsletter.ListID <= 0 {
		utils.LogWarning("No newsletter list id (set newsletter.list_id or %s)", config.EnvListID)
	}
	if len(cfg.Postiz.Groups[cfg.Socials.Group]) == 0 && len(cfg.Socials.Integrations) == 0 {
		utils.LogWarning("No postiz integrations for group %q and no socials.integrations", cfg.Socials.Group)
	}
	return nil
}
