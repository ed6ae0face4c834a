// Package workflow runs a release described in YAML as an ordered list of module steps
package workflow

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// Step is a single module invocation
type Step struct {
	Name       string                 `yaml:"name"`
	Module     string                 `yaml:"module"`
	Parameters map[string]interface{} `yaml:"parameters"`
}

// Workflow is a named sequence of steps
type Workflow struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// StepStatus tracks a step through a run
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepComplete StepStatus = "complete"
	StepFailed   StepStatus = "failed"
)

// State records the outcome of a run
type State struct {
	ID        string
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Status    map[string]StepStatus
	Outputs   map[string]map[string]string
}

// ${steps.<step>.<output>} refers to an output produced by an earlier step
var refPattern = regexp.MustCompile(`\$\{steps\.([A-Za-z0-9_-]+)\.([A-Za-z0-9_]+)\}`)

// LoadFromFile reads and structurally validates a workflow file
func LoadFromFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a workflow definition
func Parse(data []byte) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse workflow YAML: %w", err)
	}
	if err := w.ValidateStructure(); err != nil {
		return nil, fmt.Errorf("invalid workflow configuration: %w", err)
	}
	return &w, nil
}

// ValidateStructure checks names and forward references without touching modules
func (w *Workflow) ValidateStructure() error {
	if w.Name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	seen := make(map[string]bool, len(w.Steps))
	for i, step := range w.Steps {
		if step.Name == "" {
			return fmt.Errorf("name is required for step %d", i+1)
		}
		if step.Module == "" {
			return fmt.Errorf("module is required for step %s", step.Name)
		}
		if seen[step.Name] {
			return fmt.Errorf("duplicate step name %s", step.Name)
		}
		for _, v := range step.Parameters {
			s, ok := v.(string)
			if !ok {
				continue
			}
			for _, m := range refPattern.FindAllStringSubmatch(s, -1) {
				if !seen[m[1]] {
					return fmt.Errorf("step %s refers to %s before it runs", step.Name, m[1])
				}
			}
		}
		seen[step.Name] = true
	}
	return nil
}

// Run executes the steps in order and stops at the first failure
func (w *Workflow) Run(ctx context.Context, registry *mod.ModuleRegistry) (*State, error) {
	state := &State{
		ID:        uuid.NewString(),
		Name:      w.Name,
		StartTime: time.Now(),
		Status:    make(map[string]StepStatus, len(w.Steps)),
		Outputs:   make(map[string]map[string]string, len(w.Steps)),
	}
	for _, step := range w.Steps {
		state.Status[step.Name] = StepPending
	}
	defer func() { state.EndTime = time.Now() }()

	for i, step := range w.Steps {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		utils.LogInfo("Step %d/%d: %s (%s)", i+1, len(w.Steps), step.Name, step.Module)

		params, err := resolveParams(step.Parameters, state.Outputs)
		if err != nil {
			state.Status[step.Name] = StepFailed
			return state, fmt.Errorf("step %s: %w", step.Name, err)
		}

		result, err := registry.Run(ctx, step.Module, params)
		if err != nil {
			state.Status[step.Name] = StepFailed
			return state, fmt.Errorf("step %s: %w", step.Name, err)
		}
		state.Outputs[step.Name] = result.Outputs
		state.Status[step.Name] = StepComplete
	}

	utils.LogSuccess("Workflow %s completed (%s)", w.Name, state.ID)
	return state, nil
}

func resolveParams(params map[string]interface{}, outputs map[string]map[string]string) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(params))
	for key, value := range params {
		s, ok := value.(string)
		if !ok {
			resolved[key] = value
			continue
		}

		var missing error
		resolved[key] = refPattern.ReplaceAllStringFunc(s, func(ref string) string {
			m := refPattern.FindStringSubmatch(ref)
			out, ok := outputs[m[1]][m[2]]
			if !ok && missing == nil {
				missing = fmt.Errorf("step %s produced no output %s", m[1], m[2])
			}
			return out
		})
		if missing != nil {
			return nil, missing
		}
	}
	return resolved, nil
}
