package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/antoniolg/agent-kit/internal/utils"
)

// StringList accepts either a list of strings or a comma separated string
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = cleanList(items)
	case yaml.ScalarNode:
		*s = utils.SplitCSV(value.Value)
	default:
		return fmt.Errorf("line %d: expected a list or a comma separated string", value.Line)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*s = cleanList(items)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected a list or a comma separated string: %w", err)
	}
	*s = utils.SplitCSV(raw)
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler
func (s *StringList) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		*s = utils.SplitCSV(v)
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string list item, got %T", item)
			}
			items = append(items, str)
		}
		*s = cleanList(items)
	default:
		return fmt.Errorf("expected a list or a comma separated string, got %T", data)
	}
	return nil
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Integration is a postiz integration. In config it is either a bare id
// string or a mapping with an id and the network it posts to.
type Integration struct {
	ID      string `yaml:"id" json:"id" toml:"id"`
	Network string `yaml:"network" json:"network" toml:"network"`
}

type integrationFields Integration

// UnmarshalYAML implements yaml.Unmarshaler
func (i *Integration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*i = Integration{ID: strings.TrimSpace(value.Value)}
		return nil
	}
	var fields integrationFields
	if err := value.Decode(&fields); err != nil {
		return err
	}
	*i = Integration(fields)
	i.normalize()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Integration) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*i = Integration{ID: strings.TrimSpace(id)}
		return nil
	}
	var fields integrationFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("expected an id string or an object: %w", err)
	}
	*i = Integration(fields)
	i.normalize()
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler
func (i *Integration) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		*i = Integration{ID: strings.TrimSpace(v)}
	case map[string]interface{}:
		id, _ := v["id"].(string)
		network, _ := v["network"].(string)
		*i = Integration{ID: id, Network: network}
		i.normalize()
	default:
		return fmt.Errorf("expected an id string or a table, got %T", data)
	}
	return nil
}

func (i *Integration) normalize() {
	i.ID = strings.TrimSpace(i.ID)
	i.Network = strings.ToLower(strings.TrimSpace(i.Network))
}
