package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a worldsmith project config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, dsn)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Storage DSN (default sqlite://worldsmith.db)")
	return cmd
}

func runInit(projectName, dsn string) error {
	cfg := config.Default(projectName)
	if dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if err := config.Write(configPath, cfg); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists", configPath)
		}
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", configPath)
	return nil
}
