// Package extract accumulates world-building facts pulled out of source
// documents by the AI collaborator.
//
// Entities are matched by natural key: name for characters, locations,
// items and factions, title for events, compared case-insensitively. Two
// different characters that share a name collapse into one entry.
package extract

import "strings"

// Fields is one extracted entity. The AI schema is open-ended, so entities
// stay loose JSON objects until Apply turns them into world types.
type Fields map[string]any

// Result is the extraction accumulator.
type Result struct {
	Characters    []Fields `json:"characters"`
	Locations     []Fields `json:"locations"`
	Items         []Fields `json:"items"`
	Factions      []Fields `json:"factions"`
	Events        []Fields `json:"events"`
	Themes        []string `json:"themes"`
	PlotPoints    []string `json:"plotPoints"`
	WorldBuilding []string `json:"worldBuilding"`
}

func NewResult() *Result {
	return &Result{
		Characters:    []Fields{},
		Locations:     []Fields{},
		Items:         []Fields{},
		Factions:      []Fields{},
		Events:        []Fields{},
		Themes:        []string{},
		PlotPoints:    []string{},
		WorldBuilding: []string{},
	}
}

const (
	nameKey  = "name"
	titleKey = "title"
)

// naturalKey returns the lower-cased key field and whether it is usable.
func naturalKey(f Fields, field string) (string, bool) {
	value, ok := f[field].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.ToLower(value), true
}

// String returns a string field or "".
func (f Fields) String(key string) string {
	if value, ok := f[key].(string); ok {
		return value
	}
	return ""
}
