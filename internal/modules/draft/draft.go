// Package draft creates, or reuses, a private placeholder upload whose
// identifier later commands pick up from the sentinel file.
package draft

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/storage"
	"github.com/antoniolg/agent-kit/internal/utils"
)

const (
	// DescriptionFileName is written next to the id file for the placeholder upload
	DescriptionFileName = "description.draft.txt"
	placeholderText     = "Draft upload. Metadata will be updated."
)

// Module implements the draft uploader
type Module struct {
	publisher mod.Module
	now       func() time.Time
}

// Params contains the parameters for a draft upload
type Params struct {
	Video         string `json:"video"`         // Video to upload
	OutputVideoID string `json:"outputVideoId"` // Sentinel file for the id
	ClientSecret  string `json:"clientSecret"`  // OAuth client secret JSON
}

// New creates a draft uploader that delegates the upload to publisher
func New(publisher mod.Module) mod.Module {
	return &Module{publisher: publisher, now: time.Now}
}

// Name returns the module name
func (m *Module) Name() string {
	return "draft"
}

// Validate checks if the parameters are valid
func (m *Module) Validate(params map[string]interface{}) error {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return err
	}
	if err := utils.RequireValue("outputVideoId", p.OutputVideoID); err != nil {
		return err
	}
	if _, err := storage.ReadVideoID(p.OutputVideoID); err == nil {
		return nil
	}
	return utils.RequireFile("video", p.Video)
}

// Execute reuses a recorded id or uploads a placeholder
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (mod.ModuleResult, error) {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return mod.ModuleResult{}, err
	}

	id, err := storage.ReadVideoID(p.OutputVideoID)
	switch {
	case err == nil:
		urlPath, err := storage.WriteWatchURL(p.OutputVideoID, id)
		if err != nil {
			return mod.ModuleResult{}, err
		}
		utils.LogInfo("Reusing existing draft video id: %s", id)
		return result(id, urlPath, true), nil
	case !errors.Is(err, storage.ErrMissingVideoID):
		return mod.ModuleResult{}, err
	}
	utils.LogVerbose("No reusable id: %v", err)

	descPath := filepath.Join(filepath.Dir(p.OutputVideoID), DescriptionFileName)
	if err := utils.WriteTextFile(descPath, placeholderText); err != nil {
		return mod.ModuleResult{}, err
	}

	publishParams := map[string]interface{}{
		"video":           p.Video,
		"title":           "Draft " + m.now().Format("2006-01-02 15:04"),
		"descriptionFile": descPath,
		"privacyStatus":   "private",
		"outputVideoId":   p.OutputVideoID,
	}
	if p.ClientSecret != "" {
		publishParams["clientSecret"] = p.ClientSecret
	}

	if err := m.publisher.Validate(publishParams); err != nil {
		return mod.ModuleResult{}, err
	}
	if _, err := m.publisher.Execute(ctx, publishParams); err != nil {
		return mod.ModuleResult{}, fmt.Errorf("draft upload failed: %w", err)
	}

	id, err = storage.ReadVideoID(p.OutputVideoID)
	if err != nil {
		return mod.ModuleResult{}, fmt.Errorf("upload finished but %w", err)
	}
	urlPath, err := storage.WriteWatchURL(p.OutputVideoID, id)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	utils.LogSuccess("Draft uploaded: %s", storage.WatchURL(id))
	return result(id, urlPath, false), nil
}

func result(id, urlPath string, reused bool) mod.ModuleResult {
	return mod.ModuleResult{
		Outputs: map[string]string{
			"videoId": id,
			"url":     urlPath,
		},
		Metadata: map[string]interface{}{"reused": reused},
	}
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: "video", Description: "Video to upload when no id is recorded", Patterns: []string{".mp4", ".mov"}, Type: string(mod.IOTypeFile)},
			{Name: "outputVideoId", Description: "Sentinel file holding the video id", Patterns: []string{".txt"}, Type: string(mod.IOTypeFile)},
		},
		OptionalInputs: []mod.ModuleInput{
			{Name: "clientSecret", Description: "OAuth client secret JSON", Patterns: []string{".json"}, Type: string(mod.IOTypeFile)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: "videoId", Description: "Identifier of the draft upload", Type: string(mod.IOTypeData)},
			{Name: "url", Description: "File with the canonical watch URL", Patterns: []string{storage.URLFileName}, Type: string(mod.IOTypeFile)},
		},
	}
}
