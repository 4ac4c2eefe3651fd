package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"worldsmith/internal/store"
	"worldsmith/internal/world"
)

func newTestRepo(t *testing.T) *world.Repository {
	t.Helper()
	repo := world.NewRepository(store.NewMemory())
	repo.Now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	next := 0
	repo.NewID = func() string {
		next++
		return fmt.Sprintf("x-%d", next)
	}
	return repo
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	w, err := repo.CreateWorld(ctx, world.NewWorld{Name: "Eldoria"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	err = world.Save(ctx, repo.Store(), world.Characters, w.ID, []world.Character{
		{ID: "c1", WorldID: w.ID, Name: "Aria"},
	})
	if err != nil {
		t.Fatalf("seed characters: %v", err)
	}

	r := NewResult()
	r.Characters = []Fields{
		{"name": "aria", "role": "Mage"},
		{"name": "Borin", "role": "Smith", "goals": []any{"forge", "rest"}},
	}
	r.Locations = []Fields{{"name": "Harbor", "population": float64(1200)}}
	r.Items = []Fields{{"name": "Lantern", "description": "Old.", "significance": "Guides ships."}}
	r.Factions = []Fields{{"name": "Tide Guild"}}
	r.Events = []Fields{{"title": "The Flood", "date": "Year 3"}}
	r.Themes = []string{"fate"}
	r.PlotPoints = []string{"Aria leaves the harbor"}
	r.WorldBuilding = []string{"Two moons", ""}

	report, err := Apply(ctx, repo, w.ID, r)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if report.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %d", report.Skipped)
	}
	want := map[world.Collection]int{
		world.Characters: 1,
		world.Locations:  1,
		world.Items:      1,
		world.Factions:   1,
		world.Timelines:  1,
		world.LoreNotes:  3,
	}
	for c, n := range want {
		if report.Added[c] != n {
			t.Fatalf("expected %d added to %s, got %d", n, c, report.Added[c])
		}
	}

	chars, _ := world.Load[world.Character](ctx, repo.Store(), world.Characters, w.ID)
	if len(chars) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(chars))
	}
	if chars[0].Role != "" {
		t.Fatalf("expected existing Aria untouched, got role %q", chars[0].Role)
	}
	if chars[1].Name != "Borin" || chars[1].Goals != "forge; rest" || chars[1].WorldID != w.ID {
		t.Fatalf("unexpected new character %+v", chars[1])
	}

	locs, _ := world.Load[world.Location](ctx, repo.Store(), world.Locations, w.ID)
	if len(locs) != 1 || locs[0].Population != "1200" {
		t.Fatalf("unexpected locations %+v", locs)
	}

	items, _ := world.Load[world.Item](ctx, repo.Store(), world.Items, w.ID)
	if len(items) != 1 || items[0].Description != "Old. Guides ships." {
		t.Fatalf("unexpected items %+v", items)
	}

	timelines, _ := world.Load[world.Timeline](ctx, repo.Store(), world.Timelines, w.ID)
	if len(timelines) != 1 || timelines[0].Name != ExtractedTimeline {
		t.Fatalf("expected extracted timeline, got %+v", timelines)
	}
	if len(timelines[0].Events) != 1 || timelines[0].Events[0].Date != "Year 3" {
		t.Fatalf("unexpected events %+v", timelines[0].Events)
	}

	notes, _ := world.Load[world.LoreNote](ctx, repo.Store(), world.LoreNotes, w.ID)
	categories := map[string]string{}
	for _, n := range notes {
		categories[n.Category] = n.Content
	}
	if categories[CategoryTheme] != "fate" || categories[CategoryPlot] != "Aria leaves the harbor" || categories[CategoryWorldBuilding] != "Two moons" {
		t.Fatalf("unexpected lore notes %+v", notes)
	}
}

func TestApplyTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	w, err := repo.CreateWorld(ctx, world.NewWorld{Name: "Eldoria"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}

	r := NewResult()
	r.Characters = []Fields{{"name": "Aria"}}
	r.Events = []Fields{{"title": "The Flood"}}
	r.Themes = []string{"fate"}

	if _, err := Apply(ctx, repo, w.ID, r); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	report, err := Apply(ctx, repo, w.ID, r)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if report.Skipped != 3 || len(report.Added) != 0 {
		t.Fatalf("expected everything skipped, got %+v", report)
	}

	timelines, _ := world.Load[world.Timeline](ctx, repo.Store(), world.Timelines, w.ID)
	if len(timelines) != 1 || len(timelines[0].Events) != 1 {
		t.Fatalf("expected one timeline with one event, got %+v", timelines)
	}
}

func TestApplyUnknownWorld(t *testing.T) {
	repo := newTestRepo(t)
	_, err := Apply(context.Background(), repo, "missing", NewResult())
	if !errors.Is(err, world.ErrWorldNotFound) {
		t.Fatalf("expected ErrWorldNotFound, got %v", err)
	}
}
