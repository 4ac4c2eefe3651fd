package extract

import (
	"context"
	"fmt"
	"strings"

	"worldsmith/internal/world"
)

// ExtractedTimeline is the timeline that receives extracted events.
const ExtractedTimeline = "Extracted Events"

// Lore note categories used for the scalar lists.
const (
	CategoryTheme         = "theme"
	CategoryPlot          = "plot"
	CategoryWorldBuilding = "worldbuilding"
)

type ApplyReport struct {
	Added   map[world.Collection]int
	Skipped int
}

// Apply persists a cleaned result into worldID as real entities. Anything
// whose natural key already exists in the world (case-insensitively) is
// skipped rather than duplicated.
func Apply(ctx context.Context, repo *world.Repository, worldID string, r *Result) (*ApplyReport, error) {
	if _, err := repo.GetWorld(ctx, worldID); err != nil {
		return nil, err
	}
	r = Clean(r)
	st := repo.Store()
	now := repo.Now()
	report := &ApplyReport{Added: map[world.Collection]int{}}

	chars, err := world.Load[world.Character](ctx, st, world.Characters, worldID)
	if err != nil {
		return nil, err
	}
	names := nameSet(chars, func(c world.Character) string { return c.Name })
	for _, f := range r.Characters {
		if !names.claim(f.String(nameKey)) {
			report.Skipped++
			continue
		}
		chars = append(chars, world.Character{
			ID:          repo.NewID(),
			WorldID:     worldID,
			Name:        f.String(nameKey),
			Role:        f.String("role"),
			Description: f.String("description"),
			Appearance:  f.String("appearance"),
			Personality: f.String("personality"),
			Backstory:   f.String("backstory"),
			Goals:       text(f["goals"]),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		report.Added[world.Characters]++
	}

	locs, err := world.Load[world.Location](ctx, st, world.Locations, worldID)
	if err != nil {
		return nil, err
	}
	names = nameSet(locs, func(l world.Location) string { return l.Name })
	for _, f := range r.Locations {
		if !names.claim(f.String(nameKey)) {
			report.Skipped++
			continue
		}
		locs = append(locs, world.Location{
			ID:          repo.NewID(),
			WorldID:     worldID,
			Name:        f.String(nameKey),
			Type:        f.String("type"),
			Description: f.String("description"),
			Climate:     f.String("climate"),
			Population:  text(f["population"]),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		report.Added[world.Locations]++
	}

	items, err := world.Load[world.Item](ctx, st, world.Items, worldID)
	if err != nil {
		return nil, err
	}
	names = nameSet(items, func(it world.Item) string { return it.Name })
	for _, f := range r.Items {
		if !names.claim(f.String(nameKey)) {
			report.Skipped++
			continue
		}
		items = append(items, world.Item{
			ID:          repo.NewID(),
			WorldID:     worldID,
			Name:        f.String(nameKey),
			Type:        f.String("type"),
			Rarity:      f.String("rarity"),
			Description: joinNonEmpty(f.String("description"), f.String("significance")),
			Powers:      text(f["powers"]),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		report.Added[world.Items]++
	}

	factions, err := world.Load[world.Faction](ctx, st, world.Factions, worldID)
	if err != nil {
		return nil, err
	}
	names = nameSet(factions, func(fa world.Faction) string { return fa.Name })
	for _, f := range r.Factions {
		if !names.claim(f.String(nameKey)) {
			report.Skipped++
			continue
		}
		factions = append(factions, world.Faction{
			ID:          repo.NewID(),
			WorldID:     worldID,
			Name:        f.String(nameKey),
			Type:        f.String("type"),
			Description: f.String("description"),
			Goals:       text(f["goals"]),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		report.Added[world.Factions]++
	}

	timelines, err := world.Load[world.Timeline](ctx, st, world.Timelines, worldID)
	if err != nil {
		return nil, err
	}
	if len(r.Events) > 0 {
		idx := -1
		for i, tl := range timelines {
			if strings.EqualFold(tl.Name, ExtractedTimeline) {
				idx = i
				break
			}
		}
		if idx == -1 {
			timelines = append(timelines, world.Timeline{
				ID:        repo.NewID(),
				WorldID:   worldID,
				Name:      ExtractedTimeline,
				CreatedAt: now,
			})
			idx = len(timelines) - 1
		}
		tl := &timelines[idx]
		titles := nameSet(tl.Events, func(ev world.TimelineEvent) string { return ev.Title })
		for _, f := range r.Events {
			if !titles.claim(f.String(titleKey)) {
				report.Skipped++
				continue
			}
			tl.Events = append(tl.Events, world.TimelineEvent{
				ID:          repo.NewID(),
				Title:       f.String(titleKey),
				Date:        text(f["date"]),
				Description: f.String("description"),
			})
			report.Added[world.Timelines]++
		}
		tl.UpdatedAt = now
	}

	notes, err := world.Load[world.LoreNote](ctx, st, world.LoreNotes, worldID)
	if err != nil {
		return nil, err
	}
	for _, group := range []struct {
		category string
		entries  []string
	}{
		{CategoryTheme, r.Themes},
		{CategoryPlot, r.PlotPoints},
		{CategoryWorldBuilding, r.WorldBuilding},
	} {
		seen := nameSet(notes, func(n world.LoreNote) string {
			if n.Category != group.category {
				return ""
			}
			return n.Content
		})
		for _, entry := range group.entries {
			if !seen.claim(entry) {
				report.Skipped++
				continue
			}
			notes = append(notes, world.LoreNote{
				ID:        repo.NewID(),
				WorldID:   worldID,
				Title:     noteTitle(entry),
				Category:  group.category,
				Content:   entry,
				CreatedAt: now,
				UpdatedAt: now,
			})
			report.Added[world.LoreNotes]++
		}
	}

	saves := []func() error{
		func() error { return world.Save(ctx, st, world.Characters, worldID, chars) },
		func() error { return world.Save(ctx, st, world.Locations, worldID, locs) },
		func() error { return world.Save(ctx, st, world.Items, worldID, items) },
		func() error { return world.Save(ctx, st, world.Factions, worldID, factions) },
		func() error { return world.Save(ctx, st, world.Timelines, worldID, timelines) },
		func() error { return world.Save(ctx, st, world.LoreNotes, worldID, notes) },
	}
	for _, save := range saves {
		if err := save(); err != nil {
			return nil, fmt.Errorf("apply extraction: %w", err)
		}
	}
	if _, err := repo.UpdateWorld(ctx, worldID, func(*world.World) {}); err != nil {
		return nil, err
	}
	return report, nil
}

// keySet tracks lower-cased natural keys already present.
type keySet map[string]struct{}

func nameSet[T any](items []T, key func(T) string) keySet {
	set := keySet{}
	for _, item := range items {
		if k := strings.ToLower(strings.TrimSpace(key(item))); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// claim reports whether name is new and records it.
func (s keySet) claim(name string) bool {
	k := strings.ToLower(strings.TrimSpace(name))
	if k == "" {
		return false
	}
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

// text flattens a string or list of strings from loose AI output.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func noteTitle(entry string) string {
	const max = 80
	entry = strings.Join(strings.Fields(entry), " ")
	if len([]rune(entry)) <= max {
		return entry
	}
	return strings.TrimSpace(Truncate(entry, max-1)) + "…"
}
