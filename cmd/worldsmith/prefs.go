package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldsmith/internal/transfer"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change export preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefsShow()
		},
	}
	cmd.AddCommand(prefsSetCmd())
	return cmd
}

func prefsSetCmd() *cobra.Command {
	var format string
	var pretty bool
	var upload bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update export preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if cmd.Flags().Changed("format") {
				p.DefaultFormat = transfer.Format(format)
			}
			if cmd.Flags().Changed("pretty") {
				p.PrettyJSON = pretty
			}
			if cmd.Flags().Changed("upload") {
				p.UploadAfterExport = upload
			}
			if err := a.Prefs.Save(ctx, p); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Preferences saved.")
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Default export format: json or markdown")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Indent JSON exports")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload every export to remote storage")
	return cmd
}

func runPrefsShow() error {
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
	fmt.Fprintf(os.Stdout, "Default format:      %s\n", p.DefaultFormat)
	fmt.Fprintf(os.Stdout, "Pretty JSON:         %t\n", p.PrettyJSON)
	fmt.Fprintf(os.Stdout, "Upload after export: %t\n", p.UploadAfterExport)
	fmt.Fprintf(os.Stdout, "Remote sync:         %t\n", a.Sync.Enabled())
	return nil
}
