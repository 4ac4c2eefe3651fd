package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"worldsmith/internal/logger"
	"worldsmith/internal/world"
)

const DefaultImportSuffix = " (Imported)"

type Options struct {
	// ImportSuffix is appended to the name of every imported world.
	ImportSuffix string
	// RewriteReferences mints new ids for every imported entity and rewrites
	// references between them. When false, entity ids are kept verbatim and
	// only worldId changes.
	RewriteReferences bool
}

type Service struct {
	repo *world.Repository
	log  *logger.Logger
	opts Options
}

func NewService(repo *world.Repository, log *logger.Logger, opts Options) *Service {
	if opts.ImportSuffix == "" {
		opts.ImportSuffix = DefaultImportSuffix
	}
	return &Service{
		repo: repo,
		log:  log.With("service", "Transfer"),
		opts: opts,
	}
}

// Export assembles the bundle for worldID. It never writes.
func (s *Service) Export(ctx context.Context, worldID string) (*Bundle, error) {
	w, err := s.repo.GetWorld(ctx, worldID)
	if errors.Is(err, world.ErrWorldNotFound) {
		s.log.Warn("export of unknown world", "world_id", worldID)
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, worldID)
	}
	if err != nil {
		s.log.Error("export failed", "world_id", worldID, "error", err)
		return nil, fmt.Errorf("export %s: %w", worldID, err)
	}

	b := &Bundle{
		Version:    FormatVersion,
		ExportedAt: s.repo.Now(),
		World:      *w,
	}

	st := s.repo.Store()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Characters, err = world.Load[world.Character](gctx, st, world.Characters, worldID)
		return
	})
	g.Go(func() (err error) {
		b.Locations, err = world.Load[world.Location](gctx, st, world.Locations, worldID)
		return
	})
	g.Go(func() (err error) {
		b.Items, err = world.Load[world.Item](gctx, st, world.Items, worldID)
		return
	})
	g.Go(func() (err error) {
		b.Factions, err = world.Load[world.Faction](gctx, st, world.Factions, worldID)
		return
	})
	g.Go(func() (err error) {
		b.Timelines, err = world.Load[world.Timeline](gctx, st, world.Timelines, worldID)
		return
	})
	g.Go(func() (err error) {
		b.LoreNotes, err = world.Load[world.LoreNote](gctx, st, world.LoreNotes, worldID)
		return
	})
	g.Go(func() (err error) {
		b.Snapshots, err = world.Load[world.Snapshot](gctx, st, world.Snapshots, worldID)
		return
	})
	g.Go(func() (err error) {
		b.MagicSystems, err = world.Load[world.MagicSystem](gctx, st, world.MagicSystems, worldID)
		return
	})
	g.Go(func() (err error) {
		b.Mythologies, err = world.Load[world.Mythology](gctx, st, world.Mythologies, worldID)
		return
	})
	if err := g.Wait(); err != nil {
		s.log.Error("export failed", "world_id", worldID, "error", err)
		return nil, fmt.Errorf("export %s: %w", worldID, err)
	}

	s.log.Info("world exported", "world_id", worldID, "counts", b.Counts())
	return b, nil
}

// Import writes b as a new world and returns it. The source world, if it
// still exists, is never touched. A write failure aborts the import; writes
// made before the failure are not rolled back.
func (s *Service) Import(ctx context.Context, b *Bundle) (*world.World, error) {
	if b == nil {
		return nil, ErrNilBundle
	}
	if b.Version != "" && !strings.HasPrefix(b.Version, "1.") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, b.Version)
	}

	rebound := Rebind(b, RebindOptions{
		WorldID:           s.repo.NewID(),
		NameSuffix:        s.opts.ImportSuffix,
		Now:               s.repo.Now(),
		RewriteReferences: s.opts.RewriteReferences,
		NewID:             s.repo.NewID,
	})

	if err := s.write(ctx, rebound); err != nil {
		s.log.Error("import failed", "source_world_id", b.World.ID, "world_id", rebound.World.ID, "error", err)
		return nil, fmt.Errorf("import: %w", err)
	}

	s.log.Info("world imported",
		"source_world_id", b.World.ID,
		"world_id", rebound.World.ID,
		"rewrite_references", s.opts.RewriteReferences,
	)
	w := rebound.World
	return &w, nil
}

func (s *Service) write(ctx context.Context, b *Bundle) error {
	if err := s.repo.AppendWorld(ctx, b.World); err != nil {
		return err
	}
	id := b.World.ID
	st := s.repo.Store()
	writes := []func() error{
		func() error { return world.Save(ctx, st, world.Characters, id, b.Characters) },
		func() error { return world.Save(ctx, st, world.Locations, id, b.Locations) },
		func() error { return world.Save(ctx, st, world.Items, id, b.Items) },
		func() error { return world.Save(ctx, st, world.Factions, id, b.Factions) },
		func() error { return world.Save(ctx, st, world.Timelines, id, b.Timelines) },
		func() error { return world.Save(ctx, st, world.LoreNotes, id, b.LoreNotes) },
		func() error { return world.Save(ctx, st, world.Snapshots, id, b.Snapshots) },
		func() error { return world.Save(ctx, st, world.MagicSystems, id, b.MagicSystems) },
		func() error { return world.Save(ctx, st, world.Mythologies, id, b.Mythologies) },
	}
	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}
