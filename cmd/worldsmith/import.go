package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldsmith/internal/transfer"
	"worldsmith/internal/world"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <bundle.json>",
		Short: "Import an exported world as a new world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}
}

func runImport(path string) error {
	ctx := context.Background()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := transfer.ReadJSON(f)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	w, err := a.Transfer.Import(ctx, b)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Import complete.")
	fmt.Fprintf(os.Stdout, "  World: %s (%s)\n", w.Name, w.ID)
	counts := b.Counts()
	for _, c := range world.Collections {
		if counts[c] > 0 {
			fmt.Fprintf(os.Stdout, "  %-13s %d\n", c+":", counts[c])
		}
	}
	return nil
}
