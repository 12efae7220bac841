package mcp

import (
	"context"

	"capacity-mcp/internal/backend"
	"capacity-mcp/internal/config"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const (
	ServerName    = "capacity-mcp"
	ServerVersion = "0.1.0"
)

// Server holds the state for the MCP server: one capacity session fed by a loader.
type Server struct {
	cfg    *config.AppConfig
	loader *backend.Loader
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.AppConfig, loader *backend.Loader) *Server {
	return &Server{cfg: cfg, loader: loader}
}

// MCPServer builds the protocol server with every capacity tool registered.
func (s *Server) MCPServer(version string) *mcp.Server {
	if version == "" {
		version = ServerVersion
	}
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	s.registerTools(server)
	return server
}

// Start serves the tools over stdio until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context, version string) error {
	log.Info().Str("version", version).Msg("MCP server listening on stdio")
	if err := s.MCPServer(version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Error().Err(err).Msg("MCP server stopped")
		return err
	}
	return nil
}
