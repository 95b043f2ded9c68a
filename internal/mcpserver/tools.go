package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/logger"
	"github.com/esnunes/featurechat/internal/models"
)

func beginTool() mcp.Tool {
	return mcp.NewTool("begin_feature_discussion",
		mcp.WithDescription("Start a new feature discussion"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title or name of the feature"),
		),
	)
}

func provideInputTool() mcp.Tool {
	return mcp.NewTool("provide_feature_input",
		mcp.WithDescription("Provide information for the current feature discussion prompt"),
		mcp.WithString("featureId",
			mcp.Required(),
			mcp.Description("ID of the feature being discussed"),
		),
		mcp.WithString("response",
			mcp.Required(),
			mcp.Description("Your response to the current prompt"),
		),
	)
}

func listTool() mcp.Tool {
	return mcp.NewTool("list_feature_discussions",
		mcp.WithDescription("List all feature discussions with their id, title and description"),
	)
}

func (s *Server) handleBegin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.engine.Begin(ctx, title)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("begin discussion failed", "error", err)
		return nil, err
	}
	return mcp.NewToolResultText(out.Message()), nil
}

func (s *Server) handleProvideInput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("featureId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	response, err := req.RequireString("response")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.engine.Answer(ctx, id, response)
	switch {
	case errors.Is(err, interview.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("Feature %s not found", id)), nil
	case errors.Is(err, interview.ErrInvalidState):
		return mcp.NewToolResultError(fmt.Sprintf("Feature %s has already been fully documented", id)), nil
	case err != nil:
		return nil, err
	}
	return mcp.NewToolResultText(out.Message), nil
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding discussions: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// publishResource (re)registers d as a listable resource so its name and
// description stay current.
func (s *Server) publishResource(_ context.Context, d *models.Discussion) {
	s.addResource(d.ID, d.Title, d.Answers.Get(models.FieldDescription).Text)
}

func (s *Server) addResource(id, title, description string) {
	s.mcp.AddResource(
		mcp.NewResource(
			uriScheme+id,
			title,
			mcp.WithResourceDescription(description),
			mcp.WithMIMEType("application/json"),
		),
		s.handleReadResource,
	)
}
