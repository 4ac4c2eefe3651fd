package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"worldsmith/internal/ai"
	"worldsmith/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	var analyzer mcp.Analyzer
	extractor, err := a.Extractor()
	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		a.Log.Info("analyze_text disabled: no AI api key configured")
	case err != nil:
		return err
	default:
		analyzer = extractor
	}

	server := mcp.NewServer(a.Worlds, a.Transfer, analyzer, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
