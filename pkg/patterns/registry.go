// Package patterns provides a centralized registry of named content
// detectors used by the LLM risk model. All regexes are compiled once at
// first use and shared across the pipeline.
//
// Design principles:
//   - COMPILE ONCE: patterns compiled at init, not per-event
//   - CATEGORIZED: detectors grouped by category so each category yields an
//     independent normalized sub-score
//   - EXTENSIBLE: new detectors are added here without touching the
//     composite-scoring formula
package patterns

import (
	"regexp"
	"sync"
)

// Category groups detectors whose match counts are combined into one
// normalized sub-score.
type Category string

const (
	// CategorySensitive detects disclosure of secrets or restricted data.
	CategorySensitive Category = "sensitive"

	// CategoryJailbreak detects instruction-override and safety-bypass phrasing.
	CategoryJailbreak Category = "jailbreak"
)

// Detector holds a compiled regex with metadata.
type Detector struct {
	Name        string         // stable identifier for logging
	Regex       *regexp.Regexp // compiled, case-insensitive
	Category    Category
	Description string
}

// Registry holds all compiled detectors, organized by category.
type Registry struct {
	byCategory map[Category][]*Detector
	all        []*Detector
}

var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global detector registry.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category][]*Detector),
	}
	r.registerSensitiveDetectors()
	r.registerJailbreakDetectors()
	return r
}

// register compiles and stores a detector. Patterns are authored without the
// case-insensitivity flag; it is applied uniformly here.
func (r *Registry) register(name, pattern string, category Category, description string) {
	d := &Detector{
		Name:        name,
		Regex:       regexp.MustCompile(`(?i)` + pattern),
		Category:    category,
		Description: description,
	}
	r.byCategory[category] = append(r.byCategory[category], d)
	r.all = append(r.all, d)
}

// ByCategory returns the detectors for a category. Never nil.
func (r *Registry) ByCategory(category Category) []*Detector {
	if detectors, ok := r.byCategory[category]; ok {
		return detectors
	}
	return []*Detector{}
}

// All returns every registered detector.
func (r *Registry) All() []*Detector {
	return r.all
}

// CountMatches returns the total number of matches of all detectors in the
// category against text. Each occurrence counts once.
func (r *Registry) CountMatches(category Category, text string) int {
	if text == "" {
		return 0
	}
	count := 0
	for _, d := range r.byCategory[category] {
		count += len(d.Regex.FindAllStringIndex(text, -1))
	}
	return count
}
