package socials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// ErrNoIntegrations means no target integration could be resolved
var ErrNoIntegrations = errors.New("no postiz integrations")

// Selection is what the caller asked for
type Selection struct {
	Explicit       []string // --integrations, used as given
	Group          string   // postiz.groups key
	ExcludeNetwork string   // group entries tagged with this network are dropped ("" keeps all)
}

// ResolveIntegrations picks the integration ids to post to. Explicit ids
// win, then the named group, then the flat socials.integrations list.
func ResolveIntegrations(sel Selection, postiz config.PostizConfig, flat []string) ([]string, error) {
	if len(sel.Explicit) > 0 {
		return sel.Explicit, nil
	}

	members := postiz.Groups[sel.Group]
	if len(members) > 0 {
		ids := resolveGroup(members, postiz.Integrations, strings.ToLower(sel.ExcludeNetwork))
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: every integration in group %q was filtered out (excluded network %q)",
				ErrNoIntegrations, sel.Group, sel.ExcludeNetwork)
		}
		return ids, nil
	}

	var ids []string
	for _, id := range flat {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: pass --integrations or set postiz.groups.%s or socials.integrations in the config",
			ErrNoIntegrations, sel.Group)
	}
	return ids, nil
}

// resolveGroup maps group keys through the catalogue. Keys missing from
// the catalogue are taken as raw ids.
func resolveGroup(members []string, catalogue map[string]config.Integration, exclude string) []string {
	var ids []string
	for _, key := range members {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		entry, known := catalogue[key]
		if !known {
			ids = append(ids, key)
			continue
		}
		if exclude != "" && entry.Network == exclude {
			utils.LogVerbose("Skipping %s: %s posts natively", key, entry.Network)
			continue
		}
		if entry.ID == "" {
			utils.LogWarning("Integration %s has no id; skipping", key)
			continue
		}
		ids = append(ids, entry.ID)
	}
	return ids
}
