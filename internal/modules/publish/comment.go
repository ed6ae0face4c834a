package publish

import (
	"context"
	"strings"

	"github.com/antoniolg/agent-kit/internal/services/youtube"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// recentCommentWindow is how many of the newest comments are checked for a duplicate
const recentCommentWindow = 20

// insertPromoComment posts text once per video. An identical top-level
// comment among the most recent ones means it was already posted. Failures
// are warnings; the publish run continues.
func insertPromoComment(ctx context.Context, svc youtube.VideoService, videoID, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	existing, err := svc.ListTopLevelComments(ctx, videoID, recentCommentWindow)
	if err != nil {
		utils.LogWarning("could not list comments before insert: %v", err)
	}
	for _, c := range existing {
		if strings.TrimSpace(c) == text {
			utils.LogInfo("Promo comment already exists; skipping.")
			return false
		}
	}

	if err := svc.InsertComment(ctx, videoID, text); err != nil {
		utils.LogWarning("could not insert promo comment (continuing): %v", err)
		return false
	}
	utils.LogSuccess("Inserted promo comment.")
	return true
}
