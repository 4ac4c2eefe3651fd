package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "worldsmith",
		Short: "World-building data core: worlds, export, import and extraction",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "worldsmith.yaml", "Project config file")
	root.AddCommand(initCmd())
	root.AddCommand(worldCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(prefsCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
