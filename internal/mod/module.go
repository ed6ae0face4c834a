// Package mod defines the pipeline stage contract and the registry the CLI runs stages through
package mod

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Module is one stage of the release pipeline
type Module interface {
	// Name returns the module's unique identifier
	Name() string

	// GetIO describes the files the module reads and writes
	GetIO() ModuleIO

	// Validate checks preconditions without touching external services
	Validate(params map[string]interface{}) error

	// Execute runs the stage
	Execute(ctx context.Context, params map[string]interface{}) (ModuleResult, error)
}

// ModuleIO lists a module's inputs and outputs
type ModuleIO struct {
	RequiredInputs  []ModuleInput
	OptionalInputs  []ModuleInput
	ProducedOutputs []ModuleOutput
}

// ModuleInput describes a parameter the module consumes
type ModuleInput struct {
	Name        string   // Param key (e.g. "video", "bodyFile")
	Description string   // Human readable purpose
	Patterns    []string // Accepted file patterns, empty for free values
	Type        string   // One of the IOType values
}

// ModuleOutput describes something a module produces
type ModuleOutput struct {
	Name        string
	Description string
	Patterns    []string
	Type        string
}

// ModuleResult is returned by Execute
type ModuleResult struct {
	Outputs  map[string]string      // Output name to path or identifier
	Metadata map[string]interface{} // Extra facts about the run
}

// IOType is the kind of an input or output
type IOType string

const (
	IOTypeFile IOType = "file"
	IOTypeData IOType = "data"
)

// ValidateIO rejects malformed IO descriptions
func ValidateIO(io ModuleIO) error {
	check := func(kind string, i int, name, typ string) error {
		if name == "" {
			return fmt.Errorf("%s %d has empty name", kind, i)
		}
		switch IOType(typ) {
		case IOTypeFile, IOTypeData:
			return nil
		case "":
			return fmt.Errorf("%s %s has empty type", kind, name)
		default:
			return fmt.Errorf("%s %s has invalid type: %s", kind, name, typ)
		}
	}

	for i, in := range io.RequiredInputs {
		if err := check("required input", i, in.Name, in.Type); err != nil {
			return err
		}
	}
	for i, in := range io.OptionalInputs {
		if err := check("optional input", i, in.Name, in.Type); err != nil {
			return err
		}
	}
	for i, out := range io.ProducedOutputs {
		if err := check("output", i, out.Name, out.Type); err != nil {
			return err
		}
	}
	return nil
}

// ModuleRegistry stores all available modules
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewModuleRegistry creates an empty registry
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]Module)}
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("cannot register nil module")
	}

	name := m.Name()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if err := ValidateIO(m.GetIO()); err != nil {
		return fmt.Errorf("invalid I/O specification for module %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %s is already registered", name)
	}
	r.modules[name] = m
	return nil
}

// Get retrieves a module by name
func (r *ModuleRegistry) Get(name string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.modules[name]
	if !exists {
		return nil, fmt.Errorf("module %s not found", name)
	}
	return m, nil
}

// Run validates params and executes the named module
func (r *ModuleRegistry) Run(ctx context.Context, name string, params map[string]interface{}) (ModuleResult, error) {
	m, err := r.Get(name)
	if err != nil {
		return ModuleResult{}, err
	}
	if err := m.Validate(params); err != nil {
		return ModuleResult{}, err
	}
	return m.Execute(ctx, params)
}

// ListModules returns the registered modules sorted by name
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// ParseParams decodes a generic params map into a module's params struct
func ParseParams(params map[string]interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("params cannot be nil")
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct")
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("error marshaling params: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error unmarshaling params: %w", err)
	}
	return nil
}
