package cmd

import (
	"github.com/spf13/cobra"
)

var (
	socialsTextFile       string
	socialsScheduledDate  string
	socialsCommentURL     string
	socialsImage          string
	socialsIntegrations   string
	socialsGroup          string
	socialsCommentText    string
	socialsExcludeNetwork string
)

var socialsCmd = &cobra.Command{
	Use:   "socials",
	Short: "Schedule social posts with the postiz CLI",
	Long: `Schedule the post text on every resolved integration with a follow-up
comment linking to the video. Integrations come from --integrations, else the
config group (minus the excluded network), else socials.integrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{
			"textFile":      socialsTextFile,
			"scheduledDate": socialsScheduledDate,
			"commentUrl":    socialsCommentURL,
			"image":         socialsImage,
			"integrations":  socialsIntegrations,
			"group":         socialsGroup,
			"commentText":   socialsCommentText,
		}
		setIfChanged(cmd, params, "exclude-network", "excludeNetwork", socialsExcludeNetwork)
		return runModule(cmd, "socials", params)
	},
}

func init() {
	f := socialsCmd.Flags()
	f.StringVar(&socialsTextFile, "text-file", "", "Path to post text (required)")
	f.StringVar(&socialsScheduledDate, "scheduled-date", "", "ISO 8601 datetime with offset (required)")
	f.StringVar(&socialsCommentURL, "comment-url", "", "URL for first comment (required)")
	f.StringVar(&socialsImage, "image", "", "Thumbnail image path")
	f.StringVar(&socialsIntegrations, "integrations", "", "Comma-separated Postiz integration IDs")
	f.StringVar(&socialsGroup, "group", "", "Postiz group name from config (default: youtube_publish)")
	f.StringVar(&socialsCommentText, "comment-text", "", "Text prefix for the comment link")
	f.StringVar(&socialsExcludeNetwork, "exclude-network", "", `Network dropped from group integrations ("" keeps all)`)
	for _, name := range []string{"text-file", "scheduled-date", "comment-url"} {
		_ = socialsCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(socialsCmd)
}
