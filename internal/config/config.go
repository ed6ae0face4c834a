// Package config loads the release pipeline configuration. One Config is
// loaded per invocation and passed explicitly to every module.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/antoniolg/agent-kit/internal/utils"
)

const (
	// DefaultPath is used when --config is not given
	DefaultPath = "~/.config/agent-kit/config.yaml"

	DefaultPromoLine      = "Domina la IA para el desarrollo de Software 👉 https://devexpert.io/cursos/expert/ai"
	DefaultCategoryID     = "27"
	DefaultTokenPath      = "~/.config/agent-kit/youtube_token.json"
	DefaultListmonkBinary = "listmonk"
	DefaultPostizBinary   = "postiz"
	DefaultDevPrefix      = "🧑‍💻 [DEV]"
	DefaultSocialGroup    = "youtube_publish"
	DefaultExcludeNetwork = "x"
	DefaultCommentText    = "🎥 Tienes el vídeo completo y la explicación técnica aquí:"
)

// Environment variables that override file values
const (
	EnvPromoLine      = "YOUTUBE_PROMO_LINE"
	EnvPromoComment   = "YOUTUBE_PROMO_COMMENT"
	EnvClientSecret   = "YOUTUBE_CLIENT_SECRET"
	EnvTokenPath      = "YOUTUBE_TOKEN_PATH"
	EnvTimezone       = "YOUTUBE_TIMEZONE"
	EnvListID         = "LISTMONK_LIST_ID"
	EnvPostizGroup    = "POSTIZ_GROUP"
	EnvExcludeNetwork = "POSTIZ_EXCLUDE_NETWORK"
	EnvAlertTopic     = "PUBLISH_ALERT_SNS_ARN"
	EnvAlertRegion    = "PUBLISH_ALERT_REGION"
)

// Config is the whole configuration file
type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube" json:"youtube" toml:"youtube"`
	Newsletter NewsletterConfig `yaml:"newsletter" json:"newsletter" toml:"newsletter"`
	Socials    SocialsConfig    `yaml:"socials" json:"socials" toml:"socials"`
	Postiz     PostizConfig     `yaml:"postiz" json:"postiz" toml:"postiz"`
	Alerts     AlertsConfig     `yaml:"alerts" json:"alerts" toml:"alerts"`
}

// YouTubeConfig holds publish defaults
type YouTubeConfig struct {
	PromoLine            string     `yaml:"promo_line" json:"promo_line" toml:"promo_line"`
	PromoComment         string     `yaml:"promo_comment" json:"promo_comment" toml:"promo_comment"`
	Tags                 StringList `yaml:"tags" json:"tags" toml:"tags"`
	CategoryID           string     `yaml:"category_id" json:"category_id" toml:"category_id"`
	MadeForKids          bool       `yaml:"made_for_kids" json:"made_for_kids" toml:"made_for_kids"`
	NotifySubscribers    bool       `yaml:"notify_subscribers" json:"notify_subscribers" toml:"notify_subscribers"`
	DefaultLanguage      string     `yaml:"default_language" json:"default_language" toml:"default_language"`
	DefaultAudioLanguage string     `yaml:"default_audio_language" json:"default_audio_language" toml:"default_audio_language"`
	Timezone             string     `yaml:"timezone" json:"timezone" toml:"timezone"`
	ClientSecret         string     `yaml:"client_secret" json:"client_secret" toml:"client_secret"`
	TokenPath            string     `yaml:"token" json:"token" toml:"token"`
	AuthCallbackPort     int        `yaml:"auth_callback_port" json:"auth_callback_port" toml:"auth_callback_port"`
}

// NewsletterConfig configures the listmonk CLI wrapper
type NewsletterConfig struct {
	Binary string `yaml:"binary" json:"binary" toml:"binary"`
	ListID int    `yaml:"list_id" json:"list_id" toml:"list_id"`
	Prefix string `yaml:"prefix" json:"prefix" toml:"prefix"`
}

// SocialsConfig configures the postiz CLI wrapper
type SocialsConfig struct {
	Binary       string   `yaml:"binary" json:"binary" toml:"binary"`
	Group        string   `yaml:"group" json:"group" toml:"group"`
	Integrations []string `yaml:"integrations" json:"integrations" toml:"integrations"`
	CommentText  string   `yaml:"comment_text" json:"comment_text" toml:"comment_text"`
	// ExcludeNetwork is a pointer so an explicit "" (no filtering) can be
	// told apart from an unset value.
	ExcludeNetwork *string `yaml:"exclude_network" json:"exclude_network" toml:"exclude_network"`
}

// PostizConfig mirrors the integration catalogue known to postiz
type PostizConfig struct {
	Groups       map[string][]string    `yaml:"groups" json:"groups" toml:"groups"`
	Integrations map[string]Integration `yaml:"integrations" json:"integrations" toml:"integrations"`
}

// AlertsConfig configures the optional SNS release alert
type AlertsConfig struct {
	SNSTopicARN string `yaml:"sns_topic_arn" json:"sns_topic_arn" toml:"sns_topic_arn"`
	Region      string `yaml:"region" json:"region" toml:"region"`
}

// Default returns a Config with every built-in default filled in
func Default() *Config {
	exclude := DefaultExcludeNetwork
	return &Config{
		YouTube: YouTubeConfig{
			PromoLine:  DefaultPromoLine,
			CategoryID: DefaultCategoryID,
			TokenPath:  DefaultTokenPath,
		},
		Newsletter: NewsletterConfig{
			Binary: DefaultListmonkBinary,
			Prefix: DefaultDevPrefix,
		},
		Socials: SocialsConfig{
			Binary:         DefaultPostizBinary,
			Group:          DefaultSocialGroup,
			CommentText:    DefaultCommentText,
			ExcludeNetwork: &exclude,
		},
	}
}

// Load reads the file at path on top of the defaults and applies the
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	expanded, err := utils.ExpandHomeDir(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	switch {
	case os.IsNotExist(err):
		utils.LogVerbose("No config file at %s, using defaults", expanded)
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", expanded, err)
	default:
		if err := decode(expanded, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", expanded, err)
		}
		utils.LogVerbose("Loaded config from %s", expanded)
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.fillBlanks()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvPromoLine, &c.YouTube.PromoLine)
	set(EnvPromoComment, &c.YouTube.PromoComment)
	set(EnvClientSecret, &c.YouTube.ClientSecret)
	set(EnvTokenPath, &c.YouTube.TokenPath)
	set(EnvTimezone, &c.YouTube.Timezone)
	set(EnvPostizGroup, &c.Socials.Group)
	set(EnvAlertTopic, &c.Alerts.SNSTopicARN)
	set(EnvAlertRegion, &c.Alerts.Region)

	if v, ok := lookup(EnvExcludeNetwork); ok {
		v = strings.TrimSpace(v)
		c.Socials.ExcludeNetwork = &v
	}
	if v, ok := lookup(EnvListID); ok {
		if id, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Newsletter.ListID = id
		} else {
			utils.LogWarning("Ignoring %s=%q: not a number", EnvListID, v)
		}
	}
}

// fillBlanks restores defaults for values the file set to empty strings
func (c *Config) fillBlanks() {
	def := Default()
	if strings.TrimSpace(c.YouTube.PromoLine) == "" {
		c.YouTube.PromoLine = def.YouTube.PromoLine
	}
	if strings.TrimSpace(c.YouTube.CategoryID) == "" {
		c.YouTube.CategoryID = def.YouTube.CategoryID
	}
	if c.YouTube.TokenPath == "" {
		c.YouTube.TokenPath = def.YouTube.TokenPath
	}
	if c.Newsletter.Binary == "" {
		c.Newsletter.Binary = def.Newsletter.Binary
	}
	if c.Newsletter.Prefix == "" {
		c.Newsletter.Prefix = def.Newsletter.Prefix
	}
	if c.Socials.Binary == "" {
		c.Socials.Binary = def.Socials.Binary
	}
	if c.Socials.Group == "" {
		c.Socials.Group = def.Socials.Group
	}
	if c.Socials.CommentText == "" {
		c.Socials.CommentText = def.Socials.CommentText
	}
	if c.Socials.ExcludeNetwork == nil {
		c.Socials.ExcludeNetwork = def.Socials.ExcludeNetwork
	}
}

// PromoComment is the configured comment, falling back to the promo line
func (c *Config) PromoComment() string {
	if s := strings.TrimSpace(c.YouTube.PromoComment); s != "" {
		return s
	}
	return strings.TrimSpace(c.YouTube.PromoLine)
}

// ExcludedNetwork is the network filtered out of group integrations ("" = none)
func (c *Config) ExcludedNetwork() string {
	if c.Socials.ExcludeNetwork == nil {
		return ""
	}
	return strings.TrimSpace(*c.Socials.ExcludeNetwork)
}
