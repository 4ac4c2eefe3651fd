// Package validate reports integrity problems in a world bundle.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"worldsmith/internal/transfer"
	"worldsmith/internal/world"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeWorldMismatch = "world_id_mismatch"
	codeMissingName   = "missing_name"
	codeDangling      = "dangling_reference"
	codeDuplicateName = "duplicate_name"
)

type Issue struct {
	Severity   Severity         `json:"severity"`
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Collection world.Collection `json:"collection"`
	EntityID   string           `json:"entityId,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// entity is the common shape checked for every family.
type entity struct {
	id, worldID, name string
}

// Run checks b. References that leave the bundle are warnings: they are
// legal after import but point at nothing.
func Run(b *transfer.Bundle) (*Report, error) {
	if b == nil {
		return nil, transfer.ErrNilBundle
	}
	c := &checker{worldID: b.World.ID, issues: make([]Issue, 0)}

	chars := c.family(world.Characters, "name", mapEntities(b.Characters, func(v world.Character) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	locs := c.family(world.Locations, "name", mapEntities(b.Locations, func(v world.Location) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	items := c.family(world.Items, "name", mapEntities(b.Items, func(v world.Item) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	factions := c.family(world.Factions, "name", mapEntities(b.Factions, func(v world.Faction) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	timelines := c.family(world.Timelines, "name", mapEntities(b.Timelines, func(v world.Timeline) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	notes := c.family(world.LoreNotes, "title", mapEntities(b.LoreNotes, func(v world.LoreNote) entity {
		return entity{v.ID, v.WorldID, v.Title}
	}))
	c.family(world.Snapshots, "name", mapEntities(b.Snapshots, func(v world.Snapshot) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	magic := c.family(world.MagicSystems, "name", mapEntities(b.MagicSystems, func(v world.MagicSystem) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))
	myths := c.family(world.Mythologies, "name", mapEntities(b.Mythologies, func(v world.Mythology) entity {
		return entity{v.ID, v.WorldID, v.Name}
	}))

	for _, ch := range b.Characters {
		for _, rel := range ch.Relationships {
			c.ref(world.Characters, ch.ID, "relationship", rel.CharacterID, chars)
		}
	}
	for _, l := range b.Locations {
		c.ref(world.Locations, l.ID, "parentId", l.ParentID, locs)
	}
	for _, it := range b.Items {
		c.ref(world.Items, it.ID, "ownerId", it.OwnerID, chars)
		c.ref(world.Items, it.ID, "locationId", it.LocationID, locs)
	}
	for _, f := range b.Factions {
		c.ref(world.Factions, f.ID, "leaderId", f.LeaderID, chars)
		for _, id := range f.MemberIDs {
			c.ref(world.Factions, f.ID, "memberIds", id, chars)
		}
		for _, id := range f.AllyIDs {
			c.ref(world.Factions, f.ID, "allyIds", id, factions)
		}
		for _, id := range f.EnemyIDs {
			c.ref(world.Factions, f.ID, "enemyIds", id, factions)
		}
	}
	for _, tl := range b.Timelines {
		for _, ev := range tl.Events {
			if strings.TrimSpace(ev.Title) == "" {
				c.add(SeverityError, codeMissingName, world.Timelines, tl.ID, fmt.Sprintf("event %s has no title", ev.ID))
			}
			for _, id := range ev.CharacterIDs {
				c.ref(world.Timelines, tl.ID, "event characterIds", id, chars)
			}
			for _, id := range ev.LocationIDs {
				c.ref(world.Timelines, tl.ID, "event locationIds", id, locs)
			}
		}
	}

	byType := map[world.Collection]idSet{
		world.Characters:   chars,
		world.Locations:    locs,
		world.Items:        items,
		world.Factions:     factions,
		world.Timelines:    timelines,
		world.LoreNotes:    notes,
		world.MagicSystems: magic,
		world.Mythologies:  myths,
	}
	for _, n := range b.LoreNotes {
		for _, link := range n.LinkedEntities {
			target, ok := byType[world.Collection(link.Type)]
			if !ok {
				c.add(SeverityWarn, codeDangling, world.LoreNotes, n.ID, fmt.Sprintf("linked entity has unknown type %q", link.Type))
				continue
			}
			c.ref(world.LoreNotes, n.ID, "linkedEntities", link.ID, target)
		}
	}

	return &Report{Issues: c.issues}, nil
}

type idSet map[string]struct{}

type checker struct {
	worldID string
	issues  []Issue
}

func (c *checker) add(severity Severity, code string, collection world.Collection, id, message string) {
	c.issues = append(c.issues, Issue{
		Severity:   severity,
		Code:       code,
		Message:    message,
		Collection: collection,
		EntityID:   id,
	})
}

// family checks ownership, natural keys and duplicates, and returns the ids.
func (c *checker) family(collection world.Collection, keyField string, items []entity) idSet {
	ids := make(idSet, len(items))
	seen := map[string][]string{}
	for _, e := range items {
		ids[e.id] = struct{}{}
		if e.worldID != c.worldID {
			c.add(SeverityError, codeWorldMismatch, collection, e.id,
				fmt.Sprintf("worldId %q does not match world %q", e.worldID, c.worldID))
		}
		key := strings.ToLower(strings.TrimSpace(e.name))
		if key == "" {
			c.add(SeverityError, codeMissingName, collection, e.id, fmt.Sprintf("%s is blank", keyField))
			continue
		}
		seen[key] = append(seen[key], e.id)
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if dup := seen[key]; len(dup) > 1 {
			c.add(SeverityWarn, codeDuplicateName, collection, dup[0],
				fmt.Sprintf("%s %q is shared by %d entries", keyField, key, len(dup)))
		}
	}
	return ids
}

func (c *checker) ref(collection world.Collection, fromID, field, target string, ids idSet) {
	if target == "" {
		return
	}
	if _, ok := ids[target]; !ok {
		c.add(SeverityWarn, codeDangling, collection, fromID,
			fmt.Sprintf("%s points at missing %s", field, target))
	}
}

func mapEntities[T any](items []T, fn func(T) entity) []entity {
	out := make([]entity, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
