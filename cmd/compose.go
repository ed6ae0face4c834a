package cmd

import (
	"github.com/spf13/cobra"
)

var (
	composeVideo     string
	composeThumbnail string
	composeOutput    string
	composeIntroMs   int
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Prepend the thumbnail to a video as a short still intro",
	Long: `Build a native upload where the thumbnail is shown for --intro-ms
before the video starts. Audio, when present, is delayed to stay in sync.
The output path is printed on success.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{
			"video":     composeVideo,
			"thumbnail": composeThumbnail,
			"output":    composeOutput,
			"introMs":   composeIntroMs,
		}
		return runModule(cmd, "compose", params)
	},
}

func init() {
	composeCmd.Flags().StringVar(&composeVideo, "video", "", "Input video (required)")
	composeCmd.Flags().StringVar(&composeThumbnail, "thumbnail", "", "Final thumbnail image (required)")
	composeCmd.Flags().StringVar(&composeOutput, "output", "", "Output MP4 path (required)")
	composeCmd.Flags().IntVar(&composeIntroMs, "intro-ms", 500, "Cover duration in milliseconds")
	_ = composeCmd.MarkFlagRequired("video")
	_ = composeCmd.MarkFlagRequired("thumbnail")
	_ = composeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(composeCmd)
}
