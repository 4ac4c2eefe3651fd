package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"worldsmith/internal/store"
)

var ErrWorldNotFound = errors.New("world not found")

type Repository struct {
	store store.Store

	// Now and NewID are replaceable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

func NewRepository(s store.Store) *Repository {
	return &Repository{
		store: s,
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: uuid.NewString,
	}
}

func (r *Repository) Store() store.Store {
	return r.store
}

func (r *Repository) ListWorlds(ctx context.Context) ([]World, error) {
	worlds, err := readJSON[World](ctx, r.store, WorldsKey)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	return worlds, nil
}

func (r *Repository) SaveWorlds(ctx context.Context, worlds []World) error {
	if err := writeJSON(ctx, r.store, WorldsKey, worlds); err != nil {
		return fmt.Errorf("save worlds: %w", err)
	}
	return nil
}

func (r *Repository) GetWorld(ctx context.Context, id string) (*World, error) {
	worlds, err := r.ListWorlds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range worlds {
		if worlds[i].ID == id {
			return &worlds[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, id)
}

type NewWorld struct {
	Name        string
	Description string
	Genre       string
	Tags        []string
	Template    string
	Series      string
}

func (r *Repository) CreateWorld(ctx context.Context, input NewWorld) (*World, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("world name is required")
	}
	now := r.Now()
	created := World{
		ID:          r.NewID(),
		Name:        input.Name,
		Description: input.Description,
		Genre:       input.Genre,
		Tags:        input.Tags,
		Template:    input.Template,
		Series:      input.Series,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.AppendWorld(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// AppendWorld adds w to the world list without touching existing entries.
func (r *Repository) AppendWorld(ctx context.Context, w World) error {
	worlds, err := r.ListWorlds(ctx)
	if err != nil {
		return err
	}
	for _, existing := range worlds {
		if existing.ID == w.ID {
			return fmt.Errorf("world %s already exists", w.ID)
		}
	}
	return r.SaveWorlds(ctx, append(worlds, w))
}

// UpdateWorld applies mutate to the stored world and bumps UpdatedAt.
func (r *Repository) UpdateWorld(ctx context.Context, id string, mutate func(*World)) (*World, error) {
	worlds, err := r.ListWorlds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range worlds {
		if worlds[i].ID != id {
			continue
		}
		mutate(&worlds[i])
		worlds[i].ID = id
		worlds[i].UpdatedAt = r.Now()
		if err := r.SaveWorlds(ctx, worlds); err != nil {
			return nil, err
		}
		updated := worlds[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, id)
}

// DeleteWorld removes the world record. Entity collections are removed only
// when cascade is set; otherwise they stay in the store, unreachable.
func (r *Repository) DeleteWorld(ctx context.Context, id string, cascade bool) error {
	worlds, err := r.ListWorlds(ctx)
	if err != nil {
		return err
	}
	kept := worlds[:0]
	found := false
	for _, w := range worlds {
		if w.ID == id {
			found = true
			continue
		}
		kept = append(kept, w)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrWorldNotFound, id)
	}
	if err := r.SaveWorlds(ctx, kept); err != nil {
		return err
	}
	if !cascade {
		return nil
	}
	for _, c := range Collections {
		if err := r.store.Remove(ctx, c.Key(id)); err != nil {
			return fmt.Errorf("remove %s: %w", c.Key(id), err)
		}
	}
	return nil
}

// Load reads one collection of a world. A missing key is an empty list.
func Load[T any](ctx context.Context, s store.Store, c Collection, worldID string) ([]T, error) {
	items, err := readJSON[T](ctx, s, c.Key(worldID))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	return items, nil
}

// Save replaces one collection of a world.
func Save[T any](ctx context.Context, s store.Store, c Collection, worldID string, items []T) error {
	if err := writeJSON(ctx, s, c.Key(worldID), items); err != nil {
		return fmt.Errorf("save %s: %w", c, err)
	}
	return nil
}

func readJSON[T any](ctx context.Context, s store.Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeJSON[T any](ctx context.Context, s store.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
