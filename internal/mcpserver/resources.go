package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/esnunes/featurechat/internal/guidance"
	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/models"
)

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := discussionID(req.Params.URI)
	if err != nil {
		return nil, err
	}

	d, c, err := s.engine.Read(ctx, id)
	if errors.Is(err, interview.ErrNotFound) {
		return nil, fmt.Errorf("feature discussion %s not found: %w", id, err)
	}
	if err != nil {
		return nil, err
	}

	b, err := json.MarshalIndent(models.Document{Discussion: d, Context: c}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding discussion %s: %w", id, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// discussionID extracts the id from a feature:///<id> URI.
func discussionID(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid resource URI %q: %w", uri, err)
	}
	if u.Scheme != "feature" {
		return "", fmt.Errorf("unsupported resource URI %q", uri)
	}
	id := strings.TrimPrefix(u.Path, "/")
	if id == "" {
		return "", fmt.Errorf("resource URI %q has no discussion id", uri)
	}
	return id, nil
}

func guidanceHandler(t guidance.Template) server.PromptHandlerFunc {
	return func(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(
			t.Description,
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(t.System)),
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(t.User)),
			},
		), nil
	}
}
