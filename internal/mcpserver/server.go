// Package mcpserver exposes the interview engine as an MCP server: tools to
// start and answer discussions, one resource per discussion, and the static
// guidance prompts.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/esnunes/featurechat/internal/guidance"
	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/logger"
)

const (
	Name    = "feature-discussion"
	Version = "0.1.0"

	uriScheme = "feature:///"
)

type Server struct {
	engine *interview.Engine
	log    *logger.Logger
	mcp    *server.MCPServer
}

// New builds the MCP server. Every discussion already in the engine's store
// is published as a resource, and later ones are published as the engine
// creates or answers them.
func New(ctx context.Context, engine *interview.Engine, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	templates, err := guidance.Load()
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine: engine,
		log:    log,
		mcp: server.NewMCPServer(
			Name,
			Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, true),
			server.WithPromptCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(beginTool(), s.traced("begin_feature_discussion", s.handleBegin))
	s.mcp.AddTool(provideInputTool(), s.traced("provide_feature_input", s.handleProvideInput))
	s.mcp.AddTool(listTool(), s.traced("list_feature_discussions", s.handleList))

	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			uriScheme+"{id}",
			"Feature discussion",
			mcp.WithTemplateDescription("A feature discussion record with its conversation context"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleReadResource,
	)

	for _, t := range templates {
		s.mcp.AddPrompt(mcp.NewPrompt(t.Name, mcp.WithPromptDescription(t.Description)), guidanceHandler(t))
	}

	engine.Subscribe(s.publishResource)
	existing, err := engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("publishing discussions: %w", err)
	}
	for _, d := range existing {
		s.addResource(d.ID, d.Title, d.Description)
	}

	return s, nil
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves the protocol over in/out until ctx is cancelled or in
// is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serving stdio: %w", err)
	}
	return nil
}

// HTTPHandler serves the protocol over streamable HTTP.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// traced gives every tool call its own request id in the logs.
func (s *Server) traced(tool string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := s.log.With("request_id", uuid.NewString(), "tool", tool)
		log.Debug("tool call")
		return next(logger.WithLogger(ctx, log), req)
	}
}
