package cmd

import (
	"github.com/spf13/cobra"
)

var (
	newsletterSubject  string
	newsletterBodyFile string
	newsletterSendAt   string
	newsletterName     string
	newsletterListID   int
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Schedule a newsletter campaign with the listmonk CLI",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{
			"subject":  newsletterSubject,
			"bodyFile": newsletterBodyFile,
			"sendAt":   newsletterSendAt,
			"name":     newsletterName,
		}
		setIfChanged(cmd, params, "list-id", "listId", newsletterListID)
		return runModule(cmd, "newsletter", params)
	},
}

func init() {
	f := newsletterCmd.Flags()
	f.StringVar(&newsletterSubject, "subject", "", "Email subject (required)")
	f.StringVar(&newsletterBodyFile, "body-file", "", "Markdown body file (required)")
	f.StringVar(&newsletterSendAt, "send-at", "", "ISO 8601 datetime with offset (required)")
	f.StringVar(&newsletterName, "name", "", "Campaign name (required)")
	f.IntVar(&newsletterListID, "list-id", 0, "Listmonk list ID (default: LISTMONK_LIST_ID or config)")
	for _, name := range []string{"subject", "body-file", "send-at", "name"} {
		_ = newsletterCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(newsletterCmd)
}
