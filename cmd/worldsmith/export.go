package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"worldsmith/internal/transfer"
)

func exportCmd() *cobra.Command {
	var format string
	var out string
	var upload bool
	cmd := &cobra.Command{
		Use:   "export <world-id>",
		Short: "Export a world as JSON or Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], format, out, upload)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or markdown (default from preferences)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory (default: stdout)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Also upload the export to remote storage")
	return cmd
}

func runExport(cmd *cobra.Command, worldID, format, out string, upload bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	p, err := a.Prefs.Load(ctx)
	if err != nil {
		return err
	}
	if format == "" {
		format = string(p.DefaultFormat)
	}
	f, err := transfer.ParseFormat(format)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("upload") {
		upload = p.UploadAfterExport
	}

	b, err := a.Transfer.Export(ctx, worldID)
	if err != nil {
		return err
	}
	res, err := transfer.Render(b, f)
	if err != nil {
		return err
	}
	if f == transfer.FormatJSON && !p.PrettyJSON {
		var buf bytes.Buffer
		if err := transfer.WriteJSON(&buf, b, false); err != nil {
			return err
		}
		res.Data = buf.Bytes()
	}

	if out == "" {
		if _, err := os.Stdout.Write(res.Data); err != nil {
			return err
		}
	} else {
		path := out
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			path = filepath.Join(out, res.Filename)
		}
		if err := os.WriteFile(path, res.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %s to %s\n", b.World.Name, path)
	}

	if upload {
		key, err := a.UploadExport(ctx, res)
		if err != nil {
			return fmt.Errorf("upload export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Uploaded %s\n", key)
	}
	return nil
}
