// Package mcp exposes the rank service to LLM agents as MCP tools.
//
// This implementation uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp)
// and serves rank_sentences, rank_contexts and list_languages over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/contextrank/internal/logging"
	"github.com/fyrsmithlabs/contextrank/internal/rankservice"
	"github.com/fyrsmithlabs/contextrank/internal/telemetry"
)

// Server is an MCP server backed by the rank service.
type Server struct {
	mcp     *mcp.Server
	service *rankservice.Service
	metrics *Metrics
	logger  *logging.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "contextrank")
	Name string

	// Version is the server version (default: "dev")
	Version string

	// Logger for structured logging. MCP owns stdout, so the logger must
	// write to stderr or to a collector.
	Logger *logging.Logger

	// Telemetry supplies the meter for tool metrics. Nil uses the global
	// provider.
	Telemetry *telemetry.Telemetry
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "contextrank",
		Version: "dev",
		Logger:  logging.NewNop(),
	}
}

// NewServer creates an MCP server with every tool registered.
func NewServer(cfg *Config, svc *rankservice.Service) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if svc == nil {
		return nil, fmt.Errorf("rank service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		service: svc,
		metrics: NewMetrics(cfg.Telemetry.Meter(instrumentationName), logger),
		logger:  logger.Named("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Run serves the stdio transport until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// MCP exposes the underlying SDK server, for connecting other transports.
func (s *Server) MCP() *mcp.Server { return s.mcp }
