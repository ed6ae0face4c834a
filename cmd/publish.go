package cmd

import (
	"github.com/spf13/cobra"
)

var (
	publishVideo           string
	publishTitle           string
	publishDescription     string
	publishDescriptionFile string
	publishTags            string
	publishCategoryID      string
	publishPrivacyStatus   string
	publishAt              string
	publishTimezone        string
	publishThumbnail       string
	publishUpdateVideoID   string
	publishOutputVideoID   string
	publishNotify          bool
	publishNoNotify        bool
	publishClientSecret    string
	publishToken           string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload or update a YouTube video and leave it private or scheduled",
	Long: `Upload a new video (or update --update-video-id) through an unlisted
step so the promo comment can be posted, then finish private, optionally
scheduled with --publish-at. The promo line is added to the description once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{
			"video":           publishVideo,
			"title":           publishTitle,
			"description":     publishDescription,
			"descriptionFile": publishDescriptionFile,
			"tags":            publishTags,
			"categoryId":      publishCategoryID,
			"privacyStatus":   publishPrivacyStatus,
			"publishAt":       publishAt,
			"timezone":        publishTimezone,
			"thumbnail":       publishThumbnail,
			"updateVideoId":   publishUpdateVideoID,
			"outputVideoId":   publishOutputVideoID,
			"clientSecret":    publishClientSecret,
			"token":           publishToken,
		}
		if publishNotify {
			params["notifySubscribers"] = true
		}
		if publishNoNotify {
			params["notifySubscribers"] = false
		}
		return runModule(cmd, "publish", params)
	},
}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&publishVideo, "video", "", "Path to video file")
	f.StringVar(&publishTitle, "title", "", "Video title (required)")
	f.StringVar(&publishDescription, "description", "", "Video description")
	f.StringVar(&publishDescriptionFile, "description-file", "", "Path to description text file")
	f.StringVar(&publishTags, "tags", "", "Comma-separated tags")
	f.StringVar(&publishCategoryID, "category-id", "", "YouTube category id")
	f.StringVar(&publishPrivacyStatus, "privacy-status", "", "Accepted for compatibility; videos always end private")
	f.StringVar(&publishAt, "publish-at", "", "Local time: YYYY-MM-DD HH:MM")
	f.StringVar(&publishTimezone, "timezone", "", "IANA timezone, default from config")
	f.StringVar(&publishThumbnail, "thumbnail", "", "Path to thumbnail image")
	f.StringVar(&publishUpdateVideoID, "update-video-id", "", "Update an existing video id instead of uploading")
	f.StringVar(&publishOutputVideoID, "output-video-id", "", "Write uploaded video id to this file")
	f.BoolVar(&publishNotify, "notify-subscribers", false, "Notify subscribers on publish")
	f.BoolVar(&publishNoNotify, "no-notify-subscribers", false, "Do not notify subscribers")
	f.StringVar(&publishClientSecret, "client-secret", "", "OAuth client secret JSON (default: YOUTUBE_CLIENT_SECRET or config)")
	f.StringVar(&publishToken, "token", "", "Token cache path (default from config)")
	_ = publishCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(publishCmd)
}
