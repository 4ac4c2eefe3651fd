package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"worldsmith/internal/app"
	"worldsmith/internal/source"
	"worldsmith/internal/world"
)

type record = map[string]any

func watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <world-id> <collection> <file.json>",
		Short: "Auto-save a collection while its JSON file is being edited",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := world.ParseCollection(args[1])
			if err != nil {
				return err
			}
			return runWatch(args[0], c, args[2], interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "How often the file is checked")
	return cmd
}

func runWatch(worldID string, c world.Collection, path string, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(context.Background(), a)

	if _, err := a.Worlds.GetWorld(ctx, worldID); err != nil {
		return err
	}
	stored, err := world.Load[record](ctx, a.Store, c, worldID)
	if err != nil {
		return err
	}

	saver := app.Autosaver(a, func(ctx context.Context, items []record) error {
		if err := world.Save(ctx, a.Store, c, worldID, items); err != nil {
			return err
		}
		_, err := a.Worlds.UpdateWorld(ctx, worldID, func(*world.World) {})
		return err
	}, func(err error) {
		fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
	})
	saver.Seed(stored)

	fmt.Fprintf(os.Stderr, "Watching %s for %s of %s (Ctrl-C to stop)\n", path, c, worldID)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastHash := ""
	for {
		hash, err := source.Hash(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			a.Log.Warn("reading watched file", "path", path, "error", err)
		case hash != lastHash:
			lastHash = hash
			items, err := readRecords(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ignoring %s: %v\n", path, err)
				break
			}
			saver.Update(items)
		}

		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := saver.Flush(flushCtx)
			saver.Stop()
			return err
		case <-ticker.C:
		}
	}
}

func readRecords(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []record
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []record{}
	}
	return items, nil
}
