package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldsmith/internal/extract"
	"worldsmith/internal/transfer"
	"worldsmith/internal/world"
)

// Analyzer extracts world-building data from one text.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, doc extract.Document) (*extract.Result, error)
}

type Server struct {
	worlds   *world.Repository
	transfer *transfer.Service
	analyzer Analyzer
	mcp      *sdk.Server
}

// NewServer registers the world tools. analyzer may be nil, in which case
// analyze_text reports that AI is not configured.
func NewServer(worlds *world.Repository, svc *transfer.Service, analyzer Analyzer, version string) *Server {
	s := &Server{
		worlds:   worlds,
		transfer: svc,
		analyzer: analyzer,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldsmith",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
