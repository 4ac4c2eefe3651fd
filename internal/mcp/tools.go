package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldsmith/internal/extract"
	"worldsmith/internal/transfer"
	"worldsmith/internal/validate"
	"worldsmith/internal/world"
)

type ListWorldsInput struct{}

type ExportWorldInput struct {
	WorldID string `json:"world_id" jsonschema:"id of the world to export"`
	Format  string `json:"format,omitempty" jsonschema:"json or markdown, defaults to json"`
}

type ImportWorldInput struct {
	Bundle string `json:"bundle" jsonschema:"exported JSON bundle"`
}

type ValidateWorldInput struct {
	WorldID string `json:"world_id" jsonschema:"id of the world to check"`
}

type MergeExtractionsInput struct {
	Existing extract.Result `json:"existing" jsonschema:"accumulated extraction result"`
	Incoming extract.Result `json:"incoming" jsonschema:"newly extracted result to fold in"`
}

type AnalyzeTextInput struct {
	Name string `json:"name,omitempty" jsonschema:"label for the text, such as a chapter title"`
	Text string `json:"text" jsonschema:"source text to analyze"`
}

type WorldOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Genre     string `json:"genre,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type ListWorldsOutput struct {
	Worlds []WorldOutput `json:"worlds"`
}

type ExportWorldOutput struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
}

type ImportWorldOutput struct {
	World  WorldOutput    `json:"world"`
	Counts map[string]int `json:"counts"`
}

type ValidateWorldOutput struct {
	Errors   int              `json:"errors"`
	Warnings int              `json:"warnings"`
	Issues   []validate.Issue `json:"issues"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_worlds",
		Description: "List every world",
	}, s.handleListWorlds)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "export_world",
		Description: "Export a world with all of its entities as JSON or Markdown",
	}, s.handleExportWorld)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "import_world",
		Description: "Import an exported JSON bundle as a new world",
	}, s.handleImportWorld)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_world",
		Description: "Report integrity problems in a world",
	}, s.handleValidateWorld)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "merge_extractions",
		Description: "Merge two extraction results by natural key",
	}, s.handleMergeExtractions)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "analyze_text",
		Description: "Extract characters, places, events and themes from a text",
	}, s.handleAnalyzeText)
}

func (s *Server) handleListWorlds(ctx context.Context, req *sdk.CallToolRequest, input ListWorldsInput) (*sdk.CallToolResult, ListWorldsOutput, error) {
	worlds, err := s.worlds.ListWorlds(ctx)
	if err != nil {
		return nil, ListWorldsOutput{}, err
	}
	output := make([]WorldOutput, 0, len(worlds))
	for _, w := range worlds {
		output = append(output, worldOutput(w))
	}
	return nil, ListWorldsOutput{Worlds: output}, nil
}

func (s *Server) handleExportWorld(ctx context.Context, req *sdk.CallToolRequest, input ExportWorldInput) (*sdk.CallToolResult, ExportWorldOutput, error) {
	if input.WorldID == "" {
		return nil, ExportWorldOutput{}, fmt.Errorf("world_id is required")
	}
	format, err := transfer.ParseFormat(input.Format)
	if err != nil {
		return nil, ExportWorldOutput{}, err
	}
	b, err := s.transfer.Export(ctx, input.WorldID)
	if err != nil {
		return nil, ExportWorldOutput{}, err
	}
	res, err := transfer.Render(b, format)
	if err != nil {
		return nil, ExportWorldOutput{}, err
	}
	return nil, ExportWorldOutput{Filename: res.Filename, MimeType: res.MimeType, Content: string(res.Data)}, nil
}

func (s *Server) handleImportWorld(ctx context.Context, req *sdk.CallToolRequest, input ImportWorldInput) (*sdk.CallToolResult, ImportWorldOutput, error) {
	if strings.TrimSpace(input.Bundle) == "" {
		return nil, ImportWorldOutput{}, fmt.Errorf("bundle is required")
	}
	b, err := transfer.ReadJSON(strings.NewReader(input.Bundle))
	if err != nil {
		return nil, ImportWorldOutput{}, err
	}
	w, err := s.transfer.Import(ctx, b)
	if err != nil {
		return nil, ImportWorldOutput{}, err
	}
	counts := make(map[string]int)
	for c, n := range b.Counts() {
		counts[string(c)] = n
	}
	return nil, ImportWorldOutput{
		World:  worldOutput(*w),
		Counts: counts,
	}, nil
}

func (s *Server) handleValidateWorld(ctx context.Context, req *sdk.CallToolRequest, input ValidateWorldInput) (*sdk.CallToolResult, ValidateWorldOutput, error) {
	if input.WorldID == "" {
		return nil, ValidateWorldOutput{}, fmt.Errorf("world_id is required")
	}
	b, err := s.transfer.Export(ctx, input.WorldID)
	if err != nil {
		return nil, ValidateWorldOutput{}, err
	}
	report, err := validate.Run(b)
	if err != nil {
		return nil, ValidateWorldOutput{}, err
	}
	return nil, ValidateWorldOutput{
		Errors:   report.Count(validate.SeverityError),
		Warnings: report.Count(validate.SeverityWarn),
		Issues:   report.Issues,
	}, nil
}

func (s *Server) handleMergeExtractions(ctx context.Context, req *sdk.CallToolRequest, input MergeExtractionsInput) (*sdk.CallToolResult, extract.Result, error) {
	merged := extract.Clean(extract.Merge(&input.Existing, &input.Incoming))
	return nil, *merged, nil
}

func (s *Server) handleAnalyzeText(ctx context.Context, req *sdk.CallToolRequest, input AnalyzeTextInput) (*sdk.CallToolResult, extract.Result, error) {
	if s.analyzer == nil {
		return nil, extract.Result{}, fmt.Errorf("AI analysis is not configured")
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, extract.Result{}, fmt.Errorf("text is required")
	}
	name := input.Name
	if name == "" {
		name = "text"
	}
	r, err := s.analyzer.AnalyzeDocument(ctx, extract.Document{Name: name, Text: input.Text})
	if err != nil {
		return nil, extract.Result{}, err
	}
	return nil, *extract.Clean(r), nil
}

func worldOutput(w world.World) WorldOutput {
	return WorldOutput{ID: w.ID, Name: w.Name, Genre: w.Genre, UpdatedAt: w.UpdatedAt.UTC().Format(time.RFC3339)}
}
