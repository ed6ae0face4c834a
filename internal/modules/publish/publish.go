// Package publish uploads or updates a video and leaves it private,
// optionally scheduled, with the promo line and promo comment in place.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/services/alerts"
	"github.com/antoniolg/agent-kit/internal/services/youtube"
	"github.com/antoniolg/agent-kit/internal/storage"
	"github.com/antoniolg/agent-kit/internal/utils"
)

const (
	privacyUnlisted = "unlisted"
	privacyPrivate  = "private"
)

// ErrMissingUploadID is returned when the upload response carries no id
var ErrMissingUploadID = errors.New("upload failed: missing video id")

// Module implements the video publisher
type Module struct {
	cfg       *config.Config
	connect   youtube.ConnectFunc
	notifier  alerts.Notifier
	lookupEnv func(string) (string, bool)
}

// Params contains the parameters for a publish run
type Params struct {
	Video             string `json:"video"`             // Video to upload (not needed with updateVideoId)
	Title             string `json:"title"`             // Video title
	Description       string `json:"description"`       // Inline description
	DescriptionFile   string `json:"descriptionFile"`   // Description file, wins over description
	Tags              string `json:"tags"`              // Comma separated tags
	CategoryID        string `json:"categoryId"`        // Category id (default: config or 27)
	PrivacyStatus     string `json:"privacyStatus"`     // Accepted for compatibility; always private
	PublishAt         string `json:"publishAt"`         // Local schedule time: YYYY-MM-DD HH:MM
	Timezone          string `json:"timezone"`          // IANA timezone for publishAt
	Thumbnail         string `json:"thumbnail"`         // Thumbnail image
	UpdateVideoID     string `json:"updateVideoId"`     // Update this video instead of uploading
	OutputVideoID     string `json:"outputVideoId"`     // Write the uploaded id here
	NotifySubscribers *bool  `json:"notifySubscribers"` // Overrides the config default
	ClientSecret      string `json:"clientSecret"`      // OAuth client secret JSON
	Token             string `json:"token"`             // Token cache path
}

// New creates a publisher. A nil notifier disables release alerts.
func New(cfg *config.Config, connect youtube.ConnectFunc, notifier alerts.Notifier) mod.Module {
	if notifier == nil {
		notifier = alerts.Nop{}
	}
	return &Module{
		cfg:       cfg,
		connect:   connect,
		notifier:  notifier,
		lookupEnv: os.LookupEnv,
	}
}

// Name returns the module name
func (m *Module) Name() string {
	return "publish"
}

// Validate checks if the parameters are valid
func (m *Module) Validate(params map[string]interface{}) error {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return err
	}

	if err := utils.RequireValue("title", p.Title); err != nil {
		return err
	}

	if p.UpdateVideoID == "" {
		if err := utils.RequireFile("video", p.Video); err != nil {
			return err
		}
	} else if !storage.IsValidVideoID(p.UpdateVideoID) {
		return &utils.ValidationError{
			Field:   "updateVideoId",
			Message: fmt.Sprintf("%q is not a valid video id", p.UpdateVideoID),
		}
	}

	if p.DescriptionFile != "" {
		if err := utils.RequireFile("descriptionFile", p.DescriptionFile); err != nil {
			return err
		}
	} else if strings.TrimSpace(p.Description) == "" {
		return &utils.ValidationError{
			Field:   "description",
			Message: "description is required (use description or descriptionFile)",
		}
	}

	if p.Thumbnail != "" {
		if err := utils.RequireFile("thumbnail", p.Thumbnail); err != nil {
			return err
		}
	}

	secret, err := utils.ExpandHomeDir(m.clientSecret(p))
	if err != nil {
		return err
	}
	return utils.RequireFile("clientSecret", secret)
}

func (m *Module) clientSecret(p Params) string {
	if p.ClientSecret != "" {
		return p.ClientSecret
	}
	return m.cfg.YouTube.ClientSecret
}

// request is the resolved metadata for one run
type request struct {
	title                string
	description          string
	tags                 []string
	categoryID           string
	defaultLanguage      string
	defaultAudioLanguage string
	madeForKids          bool
	notifySubscribers    bool
	publishAt            string
	promoComment         string
}

// buildRequest merges params over config over defaults
func (m *Module) buildRequest(p Params) (*request, error) {
	yt := m.cfg.YouTube
	req := &request{
		title:                p.Title,
		categoryID:           yt.CategoryID,
		defaultLanguage:      yt.DefaultLanguage,
		defaultAudioLanguage: yt.DefaultAudioLanguage,
		madeForKids:          yt.MadeForKids,
		notifySubscribers:    yt.NotifySubscribers,
		promoComment:         m.cfg.PromoComment(),
	}

	description := p.Description
	if p.DescriptionFile != "" {
		text, err := utils.ReadTrimmedFile(p.DescriptionFile)
		if err != nil {
			return nil, err
		}
		description = text
	}
	if strings.TrimSpace(description) == "" {
		return nil, &utils.ValidationError{Field: "description", Message: "description is empty"}
	}
	description = EnsurePromo(description, strings.TrimSpace(yt.PromoLine))
	req.description = StripSelfURL(description, p.UpdateVideoID)

	if p.Tags != "" {
		req.tags = utils.SplitCSV(p.Tags)
	} else if len(yt.Tags) > 0 {
		req.tags = []string(yt.Tags)
	}

	if p.CategoryID != "" {
		req.categoryID = p.CategoryID
	}
	if req.categoryID == "" {
		req.categoryID = config.DefaultCategoryID
	}

	if p.NotifySubscribers != nil {
		req.notifySubscribers = *p.NotifySubscribers
	}

	if p.PrivacyStatus != "" && p.PrivacyStatus != privacyPrivate {
		utils.LogWarning("Ignoring privacy status %q: videos always end private or scheduled", p.PrivacyStatus)
	}

	if p.PublishAt != "" {
		tz := p.Timezone
		if tz == "" {
			tz = yt.Timezone
		}
		if tz == "" {
			tz = DetectTimezone(m.lookupEnv)
		}
		if tz == "" {
			return nil, &utils.ValidationError{
				Field:   "timezone",
				Message: "timezone is required for publishAt (pass --timezone or set youtube.timezone)",
			}
		}
		at, err := ParsePublishAt(p.PublishAt, tz)
		if err != nil {
			return nil, &utils.ValidationError{Field: "publishAt", Message: err.Error()}
		}
		req.publishAt = at
	}
	return req, nil
}

// video builds the API resource. Only the final state carries publishAt.
func (r *request) video(id, privacy, description string) *youtubeapi.Video {
	snippet := &youtubeapi.VideoSnippet{
		Title:                r.title,
		Description:          description,
		Tags:                 r.tags,
		CategoryId:           r.categoryID,
		DefaultLanguage:      r.defaultLanguage,
		DefaultAudioLanguage: r.defaultAudioLanguage,
	}
	status := &youtubeapi.VideoStatus{
		PrivacyStatus:           privacy,
		SelfDeclaredMadeForKids: r.madeForKids,
		ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
	}
	if privacy == privacyPrivate {
		status.PublishAt = r.publishAt
	}
	return &youtubeapi.Video{Id: id, Snippet: snippet, Status: status}
}

// Execute performs the upload or update
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (mod.ModuleResult, error) {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return mod.ModuleResult{}, err
	}

	req, err := m.buildRequest(p)
	if err != nil {
		return mod.ModuleResult{}, err
	}

	secret, err := utils.ExpandHomeDir(m.clientSecret(p))
	if err != nil {
		return mod.ModuleResult{}, err
	}
	token := p.Token
	if token == "" {
		token = m.cfg.YouTube.TokenPath
	}

	svc, err := m.connect(ctx, youtube.AuthOptions{
		ClientSecretPath: secret,
		TokenPath:        token,
		CallbackPort:     m.cfg.YouTube.AuthCallbackPort,
	})
	if err != nil {
		return mod.ModuleResult{}, err
	}

	var id string
	if p.UpdateVideoID != "" {
		id, err = m.update(ctx, svc, req, p)
	} else {
		id, err = m.upload(ctx, svc, req, p)
	}
	if err != nil {
		return mod.ModuleResult{}, err
	}

	if req.publishAt != "" {
		utils.LogInfo("Scheduled for: %s (UTC)", req.publishAt)
	}
	m.sendAlert(ctx, req, id, p.UpdateVideoID != "")

	result := mod.ModuleResult{
		Outputs: map[string]string{"videoId": id},
		Metadata: map[string]interface{}{
			"publishAt":         req.publishAt,
			"notifySubscribers": req.notifySubscribers,
			"updated":           p.UpdateVideoID != "",
		},
	}
	if p.OutputVideoID != "" {
		result.Outputs["videoIdFile"] = p.OutputVideoID
	}
	return result, nil
}

// upload walks a new video through unlisted, comment and final private
func (m *Module) upload(ctx context.Context, svc youtube.VideoService, req *request, p Params) (string, error) {
	f, err := os.Open(p.Video)
	if err != nil {
		return "", fmt.Errorf("failed to open video: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	utils.LogInfo("Uploading %s", p.Video)
	created, err := svc.InsertVideo(ctx, req.video("", privacyUnlisted, req.description), f, req.notifySubscribers, progressLogger(size))
	if err != nil {
		return "", err
	}
	if created == nil || created.Id == "" {
		return "", ErrMissingUploadID
	}
	id := created.Id

	if err := m.setThumbnail(ctx, svc, id, p.Thumbnail); err != nil {
		return "", err
	}
	if err := persistVideoID(p.OutputVideoID, id); err != nil {
		return "", err
	}

	insertPromoComment(ctx, svc, id, req.promoComment)

	if _, err := svc.UpdateVideo(ctx, req.video(id, privacyPrivate, req.description)); err != nil {
		return "", err
	}

	if stripped := StripSelfURL(req.description, id); stripped != req.description {
		utils.LogVerbose("Removing the video's own URL from its description")
		if _, err := svc.UpdateVideo(ctx, req.video(id, privacyPrivate, stripped)); err != nil {
			return "", err
		}
	}

	utils.LogSuccess("Uploaded video id: %s", id)
	if err := persistVideoID(p.OutputVideoID, id); err != nil {
		return "", err
	}
	utils.LogInfo("Notify subscribers: %t", req.notifySubscribers)
	return id, nil
}

// update moves an existing video through the same states
func (m *Module) update(ctx context.Context, svc youtube.VideoService, req *request, p Params) (string, error) {
	id := p.UpdateVideoID

	if _, err := svc.UpdateVideo(ctx, req.video(id, privacyUnlisted, req.description)); err != nil {
		return "", err
	}
	if err := m.setThumbnail(ctx, svc, id, p.Thumbnail); err != nil {
		return "", err
	}

	insertPromoComment(ctx, svc, id, req.promoComment)

	if _, err := svc.UpdateVideo(ctx, req.video(id, privacyPrivate, req.description)); err != nil {
		return "", err
	}
	utils.LogSuccess("Updated video id: %s", id)
	return id, nil
}

func (m *Module) setThumbnail(ctx context.Context, svc youtube.VideoService, id, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer f.Close()

	if err := svc.SetThumbnail(ctx, id, f); err != nil {
		return err
	}
	utils.LogVerbose("Thumbnail set from %s", path)
	return nil
}

// maxAlertSubject is the SNS subject length limit
const maxAlertSubject = 100

func (m *Module) sendAlert(ctx context.Context, req *request, id string, updated bool) {
	subject := "Video uploaded: " + req.title
	if updated {
		subject = "Video updated: " + req.title
	}
	message := storage.WatchURL(id)
	if req.publishAt != "" {
		subject = "Video scheduled: " + req.title
		message += "\nScheduled for " + req.publishAt + " (UTC)"
	}
	if r := []rune(subject); len(r) > maxAlertSubject {
		subject = string(r[:maxAlertSubject])
	}
	if err := m.notifier.Notify(ctx, subject, message); err != nil {
		utils.LogWarning("could not send release alert: %v", err)
	}
}

func persistVideoID(path, id string) error {
	if path == "" {
		return nil
	}
	if err := storage.WriteVideoID(path, id); err != nil {
		return fmt.Errorf("failed to persist video id: %w", err)
	}
	utils.LogVerbose("Wrote video id to %s", path)
	return nil
}

// progressLogger prints "Upload N%" each time the percentage moves
func progressLogger(size int64) youtube.ProgressFunc {
	last := -1
	return func(current, total int64) {
		if total <= 0 {
			total = size
		}
		if total <= 0 {
			return
		}
		pct := int(current * 100 / total)
		if pct > 100 {
			pct = 100
		}
		if pct != last {
			last = pct
			utils.LogInfo("Upload %d%%", pct)
		}
	}
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: "title", Description: "Video title", Type: string(mod.IOTypeData)},
			{Name: "clientSecret", Description: "OAuth client secret JSON (or YOUTUBE_CLIENT_SECRET)", Patterns: []string{".json"}, Type: string(mod.IOTypeFile)},
		},
		OptionalInputs: []mod.ModuleInput{
			{Name: "video", Description: "Video to upload", Patterns: []string{".mp4", ".mov"}, Type: string(mod.IOTypeFile)},
			{Name: "description", Description: "Inline description", Type: string(mod.IOTypeData)},
			{Name: "descriptionFile", Description: "Description text file", Patterns: []string{".txt", ".md"}, Type: string(mod.IOTypeFile)},
			{Name: "tags", Description: "Comma separated tags", Type: string(mod.IOTypeData)},
			{Name: "categoryId", Description: "Category id", Type: string(mod.IOTypeData)},
			{Name: "publishAt", Description: "Local schedule time YYYY-MM-DD HH:MM", Type: string(mod.IOTypeData)},
			{Name: "timezone", Description: "IANA timezone for publishAt", Type: string(mod.IOTypeData)},
			{Name: "thumbnail", Description: "Thumbnail image", Patterns: []string{".jpg", ".jpeg", ".png"}, Type: string(mod.IOTypeFile)},
			{Name: "updateVideoId", Description: "Existing video to update", Type: string(mod.IOTypeData)},
			{Name: "outputVideoId", Description: "File that receives the uploaded id", Type: string(mod.IOTypeFile)},
			{Name: "notifySubscribers", Description: "Notify subscribers on upload", Type: string(mod.IOTypeData)},
			{Name: "token", Description: "Token cache path", Patterns: []string{".json"}, Type: string(mod.IOTypeFile)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: "videoId", Description: "Identifier of the published video", Type: string(mod.IOTypeData)},
			{Name: "videoIdFile", Description: "Sentinel file holding the identifier", Patterns: []string{".txt"}, Type: string(mod.IOTypeFile)},
		},
	}
}
