package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"worldsmith/internal/extract"
	"worldsmith/internal/logger"
	"worldsmith/internal/store"
	"worldsmith/internal/transfer"
	"worldsmith/internal/world"
)

type mockAnalyzer struct {
	result  *extract.Result
	err     error
	lastDoc extract.Document
}

func (m *mockAnalyzer) AnalyzeDocument(ctx context.Context, doc extract.Document) (*extract.Result, error) {
	m.lastDoc = doc
	return m.result, m.err
}

func newTestServer(t *testing.T, analyzer Analyzer) (*Server, *world.World) {
	t.Helper()
	ctx := context.Background()
	repo := world.NewRepository(store.NewMemory())
	w, err := repo.CreateWorld(ctx, world.NewWorld{Name: "Eldoria", Genre: "fantasy"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	err = world.Save(ctx, repo.Store(), world.Characters, w.ID, []world.Character{
		{ID: "c1", WorldID: w.ID, Name: "Ava"},
		{ID: "c2", WorldID: w.ID, Name: "ava"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := transfer.NewService(repo, logger.Nop(), transfer.Options{})
	return NewServer(repo, svc, analyzer, "test"), w
}

func TestListWorlds(t *testing.T) {
	server, w := newTestServer(t, nil)

	_, output, err := server.handleListWorlds(context.Background(), nil, ListWorldsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Worlds) != 1 || output.Worlds[0].ID != w.ID || output.Worlds[0].Genre != "fantasy" {
		t.Fatalf("unexpected list output: %+v", output)
	}
}

func TestExportWorld(t *testing.T) {
	server, w := newTestServer(t, nil)

	_, output, err := server.handleExportWorld(context.Background(), nil, ExportWorldInput{WorldID: w.ID, Format: "markdown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.MimeType != "text/markdown" || !strings.Contains(output.Content, "# Eldoria") {
		t.Fatalf("unexpected export output: %+v", output)
	}

	if _, _, err := server.handleExportWorld(context.Background(), nil, ExportWorldInput{WorldID: "missing"}); !errors.Is(err, transfer.ErrWorldNotFound) {
		t.Fatalf("expected ErrWorldNotFound, got %v", err)
	}
	if _, _, err := server.handleExportWorld(context.Background(), nil, ExportWorldInput{}); err == nil {
		t.Fatalf("expected error for empty world id")
	}
}

func TestImportWorld(t *testing.T) {
	server, w := newTestServer(t, nil)

	_, exported, err := server.handleExportWorld(context.Background(), nil, ExportWorldInput{WorldID: w.ID})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	_, output, err := server.handleImportWorld(context.Background(), nil, ImportWorldInput{Bundle: exported.Content})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.World.ID == w.ID || output.World.Name != "Eldoria (Imported)" {
		t.Fatalf("unexpected imported world: %+v", output.World)
	}
	if output.Counts["characters"] != 2 {
		t.Fatalf("expected 2 characters, got %+v", output.Counts)
	}

	if _, _, err := server.handleImportWorld(context.Background(), nil, ImportWorldInput{Bundle: " "}); err == nil {
		t.Fatalf("expected error for empty bundle")
	}
}

func TestValidateWorld(t *testing.T) {
	server, w := newTestServer(t, nil)

	_, output, err := server.handleValidateWorld(context.Background(), nil, ValidateWorldInput{WorldID: w.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Errors != 0 || output.Warnings != 1 {
		t.Fatalf("expected one duplicate-name warning, got %+v", output)
	}
}

func TestMergeExtractions(t *testing.T) {
	server, _ := newTestServer(t, nil)

	var input MergeExtractionsInput
	raw := `{
		"existing": {"characters": [{"name": "Aria", "role": "Mage"}], "themes": ["fate", "loyalty"]},
		"incoming": {"characters": [{"name": "aria", "age": 30}, {"name": ""}], "themes": ["fate", "war"]}
	}`
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		t.Fatalf("decode input: %v", err)
	}

	_, output, err := server.handleMergeExtractions(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Characters) != 1 || output.Characters[0]["role"] != "Mage" || output.Characters[0]["age"] != float64(30) {
		t.Fatalf("unexpected characters: %+v", output.Characters)
	}
	if strings.Join(output.Themes, ",") != "fate,loyalty,war" {
		t.Fatalf("unexpected themes: %v", output.Themes)
	}
}

func TestAnalyzeText(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		server, _ := newTestServer(t, nil)
		if _, _, err := server.handleAnalyzeText(context.Background(), nil, AnalyzeTextInput{Text: "x"}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("analyzes", func(t *testing.T) {
		r := extract.NewResult()
		r.Locations = []extract.Fields{{"name": "Harbor"}, {"name": " "}}
		analyzer := &mockAnalyzer{result: r}
		server, _ := newTestServer(t, analyzer)

		_, output, err := server.handleAnalyzeText(context.Background(), nil, AnalyzeTextInput{Name: "Chapter 1", Text: "The harbor"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Locations) != 1 {
			t.Fatalf("expected cleaned locations, got %+v", output.Locations)
		}
		if analyzer.lastDoc.Name != "Chapter 1" || analyzer.lastDoc.Text != "The harbor" {
			t.Fatalf("unexpected document: %+v", analyzer.lastDoc)
		}
	})
}
