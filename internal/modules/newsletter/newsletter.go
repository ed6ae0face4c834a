// Package newsletter creates and schedules a listmonk campaign from a markdown body
package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// ScheduledBodyName is the copy of the body handed to listmonk
const ScheduledBodyName = "newsletter.scheduled.md"

// ErrCampaignID means the create output carried no recognizable campaign id
var ErrCampaignID = errors.New("could not extract campaign id")

var createdPattern = regexp.MustCompile(`Created campaign\s+(\d+)`)

// Module implements the newsletter scheduler
type Module struct {
	cfg *config.Config
	run runner.Runner
}

// Params contains the parameters for scheduling a newsletter
type Params struct {
	Subject  string `json:"subject"`  // Email subject
	BodyFile string `json:"bodyFile"` // Markdown body file
	SendAt   string `json:"sendAt"`   // ISO 8601 datetime with offset
	Name     string `json:"name"`     // Campaign name
	ListID   int    `json:"listId"`   // Target list (default: LISTMONK_LIST_ID or config)
}

// New creates a newsletter scheduler that runs listmonk through r
func New(cfg *config.Config, r runner.Runner) mod.Module {
	return &Module{cfg: cfg, run: r}
}

// Name returns the module name
func (m *Module) Name() string {
	return "newsletter"
}

func (m *Module) listID(p Params) int {
	if p.ListID > 0 {
		return p.ListID
	}
	return m.cfg.Newsletter.ListID
}

// Validate checks if the parameters are valid
func (m *Module) Validate(params map[string]interface{}) error {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return err
	}

	required := []struct{ field, value string }{
		{"subject", p.Subject},
		{"sendAt", p.SendAt},
		{"name", p.Name},
	}
	for _, r := range required {
		if err := utils.RequireValue(r.field, r.value); err != nil {
			return err
		}
	}
	if err := utils.RequireFile("bodyFile", p.BodyFile); err != nil {
		return err
	}
	if m.listID(p) <= 0 {
		return &utils.ValidationError{
			Field:   "listId",
			Message: fmt.Sprintf("missing list id (pass --list-id, set %s or newsletter.list_id in the config)", config.EnvListID),
		}
	}
	if _, err := time.Parse(time.RFC3339, p.SendAt); err != nil {
		utils.LogWarning("sendAt %q is not RFC 3339; passing it to listmonk as is", p.SendAt)
	}
	return nil
}

// Execute creates the campaign and moves it to scheduled
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (mod.ModuleResult, error) {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return mod.ModuleResult{}, err
	}
	listID := m.listID(p)
	if listID <= 0 {
		return mod.ModuleResult{}, fmt.Errorf("missing list id")
	}

	body, err := utils.ReadTrimmedFile(p.BodyFile)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	bodyPath := filepath.Join(filepath.Dir(p.BodyFile), ScheduledBodyName)
	if err := utils.WriteTextFile(bodyPath, body); err != nil {
		return mod.ModuleResult{}, err
	}

	prefix := m.cfg.Newsletter.Prefix
	name := EnsurePrefix(p.Name, prefix)
	subject := EnsurePrefix(p.Subject, prefix)
	bin := m.cfg.Newsletter.Binary

	out, err := m.run.Run(ctx, bin,
		"campaigns", "create",
		"--name", name,
		"--subject", subject,
		"--lists", strconv.Itoa(listID),
		"--body-file", bodyPath,
		"--content-type", "markdown",
		"--send-at", p.SendAt,
	)
	if err != nil {
		return mod.ModuleResult{}, err
	}

	id, err := ExtractCampaignID(out)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	utils.LogVerbose("Created campaign %d", id)

	if _, err := m.run.Run(ctx, bin, "campaigns", "schedule", strconv.Itoa(id), "--status", "scheduled"); err != nil {
		return mod.ModuleResult{}, err
	}

	utils.LogSuccess("Scheduled newsletter (campaign %d).", id)
	return mod.ModuleResult{
		Outputs: map[string]string{
			"campaignId": strconv.Itoa(id),
			"body":       bodyPath,
		},
		Metadata: map[string]interface{}{
			"name":    name,
			"subject": subject,
			"listId":  listID,
		},
	}, nil
}

// EnsurePrefix trims value and puts prefix in front unless it is already there
func EnsurePrefix(value, prefix string) string {
	raw := strings.TrimSpace(value)
	if prefix == "" || strings.HasPrefix(raw, prefix) {
		return raw
	}
	return prefix + " " + raw
}

// ExtractCampaignID reads the id from listmonk's "Created campaign N" line,
// falling back to a JSON body with "id" or "data.id".
func ExtractCampaignID(output string) (int, error) {
	if m := createdPattern.FindStringSubmatch(output); m != nil {
		return strconv.Atoi(m[1])
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(output), &data); err == nil {
		if id, ok := jsonID(data["id"]); ok {
			return id, nil
		}
		if inner, ok := data["data"].(map[string]interface{}); ok {
			if id, ok := jsonID(inner["id"]); ok {
				return id, nil
			}
		}
	}
	return 0, fmt.Errorf("%w from output: %s", ErrCampaignID, output)
}

func jsonID(v interface{}) (int, bool) {
	switch id := v.(type) {
	case float64:
		return int(id), id == float64(int(id))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		return n, err == nil
	default:
		return 0, false
	}
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: "subject", Description: "Email subject", Type: string(mod.IOTypeData)},
			{Name: "bodyFile", Description: "Markdown body", Patterns: []string{".md", ".txt"}, Type: string(mod.IOTypeFile)},
			{Name: "sendAt", Description: "ISO 8601 send time with offset", Type: string(mod.IOTypeData)},
			{Name: "name", Description: "Campaign name", Type: string(mod.IOTypeData)},
		},
		OptionalInputs: []mod.ModuleInput{
			{Name: "listId", Description: "Listmonk list id", Type: string(mod.IOTypeData)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: "campaignId", Description: "Scheduled campaign id", Type: string(mod.IOTypeData)},
			{Name: "body", Description: "Body file handed to listmonk", Patterns: []string{ScheduledBodyName}, Type: string(mod.IOTypeFile)},
		},
	}
}
