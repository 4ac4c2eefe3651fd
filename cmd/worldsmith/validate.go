package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldsmith/internal/transfer"
	"worldsmith/internal/validate"
)

func validateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate [world-id]",
		Short: "Run integrity checks against a world or an export file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("a world id or --file is required")
			}
			worldID := ""
			if len(args) == 1 {
				worldID = args[0]
			}
			return runValidate(worldID, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Validate an exported JSON bundle instead of a stored world")
	return cmd
}

func runValidate(worldID, file string) error {
	b, err := loadBundle(worldID, file)
	if err != nil {
		return err
	}

	report, err := validate.Run(b)
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func loadBundle(worldID, file string) (*transfer.Bundle, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return transfer.ReadJSON(f)
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	defer closeApp(ctx, a)
	return a.Transfer.Export(ctx, worldID)
}

func printIssues(out *os.File, issues []validate.Issue) {
	for _, issue := range issues {
		location := string(issue.Collection)
		if issue.EntityID != "" {
			location = fmt.Sprintf("%s/%s", issue.Collection, issue.EntityID)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
