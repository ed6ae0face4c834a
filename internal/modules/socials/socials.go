// Package socials fans a post and a follow-up link comment out to postiz integrations
package socials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// imageURLPaths are the places postiz upload responses have carried the
// public URL, checked in order.
var imageURLPaths = [][]string{
	{"url"},
	{"public_url"},
	{"publicUrl"},
	{"path"},
	{"file", "url"},
	{"file", "public_url"},
	{"file", "publicUrl"},
	{"file", "path"},
}

// Module implements the social scheduler
type Module struct {
	cfg *config.Config
	run runner.Runner
}

// Params contains the parameters for scheduling social posts
type Params struct {
	TextFile       string  `json:"textFile"`       // Post text
	ScheduledDate  string  `json:"scheduledDate"`  // ISO 8601 datetime with offset
	CommentURL     string  `json:"commentUrl"`     // Link posted as the follow-up comment
	Image          string  `json:"image"`          // Optional image to attach
	Integrations   string  `json:"integrations"`   // Comma separated integration ids
	Group          string  `json:"group"`          // Config group (default: socials.group)
	CommentText    string  `json:"commentText"`    // Text before the link
	ExcludeNetwork *string `json:"excludeNetwork"` // Network dropped from groups (default: socials.exclude_network)
}

// New creates a social scheduler that runs postiz through r
func New(cfg *config.Config, r runner.Runner) mod.Module {
	return &Module{cfg: cfg, run: r}
}

// Name returns the module name
func (m *Module) Name() string {
	return "socials"
}

// Validate checks if the parameters are valid
func (m *Module) Validate(params map[string]interface{}) error {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return err
	}

	if err := utils.RequireFile("textFile", p.TextFile); err != nil {
		return err
	}
	if err := utils.RequireValue("scheduledDate", p.ScheduledDate); err != nil {
		return err
	}
	if err := utils.RequireValue("commentUrl", p.CommentURL); err != nil {
		return err
	}
	if p.Image != "" {
		if err := utils.RequireFile("image", p.Image); err != nil {
			return err
		}
	}
	_, err := m.resolve(p)
	return err
}

func (m *Module) resolve(p Params) ([]string, error) {
	sel := Selection{
		Explicit:       utils.SplitCSV(p.Integrations),
		Group:          p.Group,
		ExcludeNetwork: m.cfg.ExcludedNetwork(),
	}
	if sel.Group == "" {
		sel.Group = m.cfg.Socials.Group
	}
	if p.ExcludeNetwork != nil {
		sel.ExcludeNetwork = strings.TrimSpace(*p.ExcludeNetwork)
	}
	return ResolveIntegrations(sel, m.cfg.Postiz, m.cfg.Socials.Integrations)
}

// Execute schedules one post per integration
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (mod.ModuleResult, error) {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return mod.ModuleResult{}, err
	}

	integrations, err := m.resolve(p)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	utils.LogVerbose("Posting to %d integration(s): %s", len(integrations), strings.Join(integrations, ", "))

	text, err := utils.ReadTrimmedFile(p.TextFile)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	text = StripHashes(text)

	bin := m.cfg.Socials.Binary
	var imageURL string
	if p.Image != "" {
		imageURL, err = m.uploadImage(ctx, bin, p.Image)
		if err != nil {
			return mod.ModuleResult{}, err
		}
	}

	commentText := p.CommentText
	if commentText == "" {
		commentText = m.cfg.Socials.CommentText
	}
	comment := commentText + " " + EncodeUnderscores(p.CommentURL)

	for _, id := range integrations {
		args := []string{
			"posts", "create",
			"--content", text,
			"--content", comment,
			"--integrations", id,
			"--status", "scheduled",
			"--scheduled-date", p.ScheduledDate,
		}
		if imageURL != "" {
			args = append(args, "--images", imageURL)
		}
		if _, err := m.run.Run(ctx, bin, args...); err != nil {
			return mod.ModuleResult{}, fmt.Errorf("failed to schedule post for %s: %w", id, err)
		}
		utils.LogVerbose("Scheduled post for %s", id)
	}

	utils.LogSuccess("Scheduled socials.")
	outputs := map[string]string{"integrations": strings.Join(integrations, ",")}
	if imageURL != "" {
		outputs["imageUrl"] = imageURL
	}
	return mod.ModuleResult{
		Outputs:  outputs,
		Metadata: map[string]interface{}{"posts": len(integrations)},
	}, nil
}

func (m *Module) uploadImage(ctx context.Context, bin, path string) (string, error) {
	out, err := m.run.Run(ctx, bin, "upload", "--file-path", path)
	if err != nil {
		return "", err
	}
	url, err := ExtractImageURL(out)
	if err != nil {
		utils.LogWarning("%v; posting without image", err)
		return "", nil
	}
	if url == "" {
		utils.LogWarning("No image URL in upload response; posting without image: %s", out)
		return "", nil
	}
	utils.LogVerbose("Uploaded image: %s", url)
	return url, nil
}

// ExtractImageURL returns the first non-empty string found along
// imageURLPaths, or "" when none matches.
func ExtractImageURL(raw string) (string, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", fmt.Errorf("unexpected upload response %q: %w", raw, err)
	}
	for _, path := range imageURLPaths {
		if v, ok := lookup(data, path).(string); ok && v != "" {
			return v, nil
		}
	}
	return "", nil
}

func lookup(data map[string]interface{}, path []string) interface{} {
	var cur interface{} = data
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

// StripHashes removes literal '#' characters so platforms don't turn words into hashtags
func StripHashes(text string) string {
	return strings.ReplaceAll(text, "#", "")
}

// EncodeUnderscores percent-encodes underscores, which some networks read as formatting
func EncodeUnderscores(url string) string {
	return strings.ReplaceAll(url, "_", "%5F")
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: "textFile", Description: "Post text", Patterns: []string{".txt", ".md"}, Type: string(mod.IOTypeFile)},
			{Name: "scheduledDate", Description: "ISO 8601 datetime with offset", Type: string(mod.IOTypeData)},
			{Name: "commentUrl", Description: "Link for the follow-up comment", Type: string(mod.IOTypeData)},
		},
		OptionalInputs: []mod.ModuleInput{
			{Name: "image", Description: "Image attached to every post", Patterns: []string{".jpg", ".jpeg", ".png", ".webp"}, Type: string(mod.IOTypeFile)},
			{Name: "integrations", Description: "Comma separated integration ids", Type: string(mod.IOTypeData)},
			{Name: "group", Description: "Integration group from the config", Type: string(mod.IOTypeData)},
			{Name: "commentText", Description: "Text before the comment link", Type: string(mod.IOTypeData)},
			{Name: "excludeNetwork", Description: "Network filtered out of groups", Type: string(mod.IOTypeData)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: "integrations", Description: "Integrations posted to", Type: string(mod.IOTypeData)},
			{Name: "imageUrl", Description: "Public URL of the uploaded image", Type: string(mod.IOTypeData)},
		},
	}
}
