package cmd

import (
	"github.com/spf13/cobra"
)

var (
	draftVideo         string
	draftOutputVideoID string
	draftClientSecret  string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Upload a private placeholder, or reuse the recorded one",
	Long: `Reuse the video id stored in --output-video-id when it is valid,
otherwise upload the video privately with a placeholder title. Either way
video_url.txt is written next to the id file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{
			"video":         draftVideo,
			"outputVideoId": draftOutputVideoID,
			"clientSecret":  draftClientSecret,
		}
		return runModule(cmd, "draft", params)
	},
}

func init() {
	draftCmd.Flags().StringVar(&draftVideo, "video", "", "Video path (required)")
	draftCmd.Flags().StringVar(&draftOutputVideoID, "output-video-id", "", "File to store video id (required)")
	draftCmd.Flags().StringVar(&draftClientSecret, "client-secret", "", "OAuth client secret JSON")
	_ = draftCmd.MarkFlagRequired("video")
	_ = draftCmd.MarkFlagRequired("output-video-id")
	rootCmd.AddCommand(draftCmd)
}
