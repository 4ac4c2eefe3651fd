package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldsmith/internal/extract"
	"worldsmith/internal/source"
	"worldsmith/internal/world"
)

func extractCmd() *cobra.Command {
	var out string
	var applyTo string
	var merge string
	cmd := &cobra.Command{
		Use:   "extract [paths...]",
		Short: "Extract world-building data from chapters with the AI collaborator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args, out, applyTo, merge)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the merged result to this file (default: stdout)")
	cmd.Flags().StringVar(&applyTo, "apply", "", "Apply the result to this world id")
	cmd.Flags().StringVar(&merge, "merge", "", "Fold the new result into a previously saved result file")
	return cmd
}

func runExtract(paths []string, out, applyTo, merge string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	if len(paths) == 0 {
		paths = a.Config.Sources
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source paths given and no sources configured")
	}
	docs, err := source.Load(paths, a.Config.Exclude)
	if err != nil {
		return err
	}

	extractor, err := a.Extractor()
	if err != nil {
		return err
	}
	result, err := extractor.AnalyzeSeries(ctx, source.ForExtraction(docs), func(done, total int, name string, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s: skipped (%v)\n", done, total, name, err)
			return
		}
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, name)
	})
	if err != nil {
		return err
	}

	if merge != "" {
		previous, err := readResult(merge)
		if err != nil {
			return err
		}
		result = extract.Clean(extract.Merge(previous, result))
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Fprintln(os.Stdout, string(data))
	} else if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	if applyTo == "" {
		return nil
	}
	report, err := extract.Apply(ctx, a.Worlds, applyTo, result)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Applied to %s:\n", applyTo)
	for _, c := range world.Collections {
		if n := report.Added[c]; n > 0 {
			fmt.Fprintf(os.Stderr, "  %-13s +%d\n", c, n)
		}
	}
	fmt.Fprintf(os.Stderr, "  skipped       %d\n", report.Skipped)
	return nil
}

func readResult(path string) (*extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := extract.ParseResult(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
