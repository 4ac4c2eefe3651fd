package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/world"
)

func worldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "Create, list and manage worlds",
	}
	cmd.AddCommand(worldCreateCmd())
	cmd.AddCommand(worldListCmd())
	cmd.AddCommand(worldShowCmd())
	cmd.AddCommand(worldRenameCmd())
	cmd.AddCommand(worldDeleteCmd())
	return cmd
}

func worldCreateCmd() *cobra.Command {
	var input world.NewWorld
	var tags string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			input.Name = args[0]
			input.Tags = splitList(tags)
			w, err := a.Worlds.CreateWorld(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Created %s (%s)\n", w.Name, w.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Description, "description", "", "World description")
	cmd.Flags().StringVar(&input.Genre, "genre", "", "Genre")
	cmd.Flags().StringVar(&input.Template, "template", "", "Template the world starts from")
	cmd.Flags().StringVar(&input.Series, "series", "", "Series the world belongs to")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	return cmd
}

func worldListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			worlds, err := a.Worlds.ListWorlds(ctx)
			if err != nil {
				return err
			}
			if len(worlds) == 0 {
				fmt.Fprintln(os.Stdout, "No worlds found.")
				return nil
			}
			for _, w := range worlds {
				genre := w.Genre
				if genre == "" {
					genre = "-"
				}
				fmt.Fprintf(os.Stdout, "%s  %s [%s] updated %s\n", w.ID, w.Name, genre, w.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func worldShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <world-id>",
		Short: "Display a world and its entity counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			b, err := a.Transfer.Export(ctx, args[0])
			if err != nil {
				return err
			}
			w := b.World
			fmt.Fprintf(os.Stdout, "Name: %s\n", w.Name)
			fmt.Fprintf(os.Stdout, "ID: %s\n", w.ID)
			if w.Genre != "" {
				fmt.Fprintf(os.Stdout, "Genre: %s\n", w.Genre)
			}
			if w.Description != "" {
				fmt.Fprintf(os.Stdout, "Description: %s\n", w.Description)
			}
			if len(w.Tags) > 0 {
				fmt.Fprintf(os.Stdout, "Tags: %s\n", strings.Join(w.Tags, ", "))
			}
			fmt.Fprintf(os.Stdout, "Created: %s\n", w.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintf(os.Stdout, "Updated: %s\n", w.UpdatedAt.Format("2006-01-02 15:04"))
			counts := b.Counts()
			fmt.Fprintln(os.Stdout, "Entities:")
			for _, c := range world.Collections {
				fmt.Fprintf(os.Stdout, "  %-13s %d\n", c, counts[c])
			}
			return nil
		},
	}
}

func worldRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <world-id> <name>",
		Short: "Rename a world",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[1])
			if name == "" {
				return fmt.Errorf("name is required")
			}
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			w, err := a.Worlds.UpdateWorld(ctx, args[0], func(w *world.World) { w.Name = name })
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Renamed %s to %s\n", w.ID, w.Name)
			return nil
		},
	}
}

func worldDeleteCmd() *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "delete <world-id>",
		Short: "Delete a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			if !cmd.Flags().Changed("cascade") {
				cascade = a.Config.Worlds.CascadeDelete
			}
			if err := a.Worlds.DeleteWorld(ctx, args[0], cascade); err != nil {
				return err
			}
			if cascade {
				fmt.Fprintf(os.Stdout, "Deleted %s and its entities\n", args[0])
			} else {
				fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also remove the world's entity collections (default from worlds.cascade_delete)")
	return cmd
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
