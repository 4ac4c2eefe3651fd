package world

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"worldsmith/internal/store"
)

func testRepository(t *testing.T) (*Repository, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	repo := NewRepository(mem)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	next := 0
	repo.NewID = func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	}
	return repo, mem
}

func TestCreateAndGetWorld(t *testing.T) {
	ctx := context.Background()
	repo, _ := testRepository(t)

	t.Run("name required", func(t *testing.T) {
		if _, err := repo.CreateWorld(ctx, NewWorld{Name: "  "}); err == nil {
			t.Fatalf("expected error")
		}
	})

	created, err := repo.CreateWorld(ctx, NewWorld{Name: "Eldoria", Genre: "fantasy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "id-1" {
		t.Fatalf("expected id-1, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected equal timestamps on create")
	}

	got, err := repo.GetWorld(ctx, "id-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Eldoria" || got.Genre != "fantasy" {
		t.Fatalf("unexpected world: %+v", got)
	}

	if _, err := repo.GetWorld(ctx, "missing"); !errors.Is(err, ErrWorldNotFound) {
		t.Fatalf("expected ErrWorldNotFound, got %v", err)
	}
}

func TestUpdateWorldBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo, _ := testRepository(t)

	created, err := repo.CreateWorld(ctx, NewWorld{Name: "Eldoria"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := repo.UpdateWorld(ctx, created.ID, func(w *World) {
		w.Name = "Eldoria Reborn"
		w.ID = "tampered"
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Eldoria Reborn" {
		t.Fatalf("expected rename, got %q", updated.Name)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected id to be preserved, got %q", updated.ID)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected createdAt unchanged")
	}

	if _, err := repo.UpdateWorld(ctx, "missing", func(*World) {}); !errors.Is(err, ErrWorldNotFound) {
		t.Fatalf("expected ErrWorldNotFound, got %v", err)
	}
}

func TestDeleteWorld(t *testing.T) {
	ctx := context.Background()

	for _, cascade := range []bool{false, true} {
		t.Run(fmt.Sprintf("cascade=%v", cascade), func(t *testing.T) {
			repo, mem := testRepository(t)
			created, err := repo.CreateWorld(ctx, NewWorld{Name: "Eldoria"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			chars := []Character{{ID: "c1", WorldID: created.ID, Name: "Ava"}}
			if err := Save(ctx, mem, Characters, created.ID, chars); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := repo.DeleteWorld(ctx, created.ID, cascade); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			worlds, err := repo.ListWorlds(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(worlds) != 0 {
				t.Fatalf("expected no worlds, got %d", len(worlds))
			}

			_, err = mem.Get(ctx, Characters.Key(created.ID))
			if cascade && !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected characters removed, got %v", err)
			}
			if !cascade && err != nil {
				t.Fatalf("expected characters kept, got %v", err)
			}
		})
	}

	t.Run("missing world", func(t *testing.T) {
		repo, _ := testRepository(t)
		if err := repo.DeleteWorld(ctx, "missing", false); !errors.Is(err, ErrWorldNotFound) {
			t.Fatalf("expected ErrWorldNotFound, got %v", err)
		}
	})
}

func TestLoadCollection(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	t.Run("missing key is empty", func(t *testing.T) {
		items, err := Load[Location](ctx, mem, Locations, "w1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", items)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if err := mem.Set(ctx, Items.Key("w1"), "{not json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := Load[Item](ctx, mem, Items, "w1"); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("nil slice saved as empty array", func(t *testing.T) {
		if err := Save[Faction](ctx, mem, Factions, "w1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		raw, err := mem.Get(ctx, Factions.Key("w1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw != "[]" {
			t.Fatalf("expected [], got %q", raw)
		}
	})
}

func TestCollectionKey(t *testing.T) {
	if got := LoreNotes.Key("w1"); got != "loreNotes_w1" {
		t.Fatalf("expected loreNotes_w1, got %q", got)
	}
	if _, err := ParseCollection("spells"); err == nil {
		t.Fatalf("expected error for unknown collection")
	}
	c, err := ParseCollection("timelines")
	if err != nil || c != Timelines {
		t.Fatalf("expected timelines, got %q (%v)", c, err)
	}
}
