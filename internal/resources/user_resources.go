package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
)

// RegisterUserResources registers resources describing the current
// authenticated TickTick account.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register user profile resource
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authenticated TickTick account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	// Register project list resource
	projectsResource := mcp.NewResource(
		"ticktick://projects",
		"Projects",
		mcp.WithResourceDescription("All TickTick projects for the current user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(projectsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjects(ctx, request, sc)
	})

	return nil
}

// handleUserProfile returns the user profile together with the local
// authentication state.
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	status, err := sc.AuthManager().AuthStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to read authentication status: %w", err)
	}

	profileData := map[string]interface{}{
		"region": sc.Config().Region,
		"auth":   status,
	}

	if status.IsAuthenticated {
		client, err := sc.APIClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create API client: %w", err)
		}

		user, err := client.User(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get user profile: %w", err)
		}
		profileData["name"] = user.Name
	}

	jsonData, err := json.MarshalIndent(profileData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleProjects returns the full project list.
func handleProjects(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.APIClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	projects, err := client.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	jsonData, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
