// Package transfer moves whole worlds in and out of the store: it assembles
// a versioned Bundle from one world's entity graph and imports a Bundle as a
// brand-new world.
package transfer

import (
	"errors"
	"time"

	"worldsmith/internal/world"
)

// FormatVersion is written into every exported bundle.
const FormatVersion = "1.0"

var (
	ErrWorldNotFound      = errors.New("export world not found")
	ErrNilBundle          = errors.New("bundle is required")
	ErrUnsupportedVersion = errors.New("unsupported bundle version")
)

// Bundle is a single exported world with every entity that belongs to it.
type Bundle struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exportedAt"`
	World        world.World         `json:"world"`
	Characters   []world.Character   `json:"characters"`
	Locations    []world.Location    `json:"locations"`
	Items        []world.Item        `json:"items"`
	Factions     []world.Faction     `json:"factions"`
	Timelines    []world.Timeline    `json:"timelines"`
	LoreNotes    []world.LoreNote    `json:"loreNotes"`
	Snapshots    []world.Snapshot    `json:"snapshots"`
	MagicSystems []world.MagicSystem `json:"magicSystems,omitempty"`
	Mythologies  []world.Mythology   `json:"mythologies,omitempty"`
}

// Counts reports the number of entities per collection.
func (b *Bundle) Counts() map[world.Collection]int {
	return map[world.Collection]int{
		world.Characters:   len(b.Characters),
		world.Locations:    len(b.Locations),
		world.Items:        len(b.Items),
		world.Factions:     len(b.Factions),
		world.Timelines:    len(b.Timelines),
		world.LoreNotes:    len(b.LoreNotes),
		world.Snapshots:    len(b.Snapshots),
		world.MagicSystems: len(b.MagicSystems),
		world.Mythologies:  len(b.Mythologies),
	}
}
