package labels

import (
	"strings"

	"florist-service/internal/models"
)

// Priority is the result of a registry lookup. Unknown priorities sort after
// every known one, so the ranking comparator never special-cases missing data.
type Priority struct {
	Value int
	Known bool
}

// Known returns a resolved priority.
func Known(value int) Priority {
	return Priority{Value: value, Known: true}
}

// Unknown is the sentinel for labels absent from the registry.
var Unknown = Priority{}

// Less orders priorities ascending by value, with Unknown after all known.
func (p Priority) Less(other Priority) bool {
	if p.Known != other.Known {
		return p.Known
	}
	return p.Known && p.Value < other.Value
}

// Registry is an immutable snapshot of the label table keyed by
// (category, lowercased name). Build a fresh one per request; lookups are
// goroutine-safe.
type Registry struct {
	byKey map[string]int
}

// NewRegistry builds a registry from label rows. Later duplicates of the same
// (category, name) pair win, matching upsert-by-id semantics upstream.
func NewRegistry(rows []models.ProductLabel) *Registry {
	byKey := make(map[string]int, len(rows))
	for _, l := range rows {
		byKey[key(l.Category, l.Name)] = l.Priority
	}
	return &Registry{byKey: byKey}
}

// Resolve looks up the priority for a label name within a category.
func (r *Registry) Resolve(category, name string) Priority {
	if r == nil || name == "" {
		return Unknown
	}
	if p, ok := r.byKey[key(category, name)]; ok {
		return Known(p)
	}
	return Unknown
}

func key(category, name string) string {
	return category + "\x00" + strings.ToLower(name)
}
