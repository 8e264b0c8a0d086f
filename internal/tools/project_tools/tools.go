package project_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// projectInputFromArgs builds a ProjectInput from tool arguments.
func projectInputFromArgs(args map[string]interface{}) ticktick.ProjectInput {
	input := ticktick.ProjectInput{}

	if name, ok := args["name"].(string); ok {
		input.Name = name
	}
	if color, ok := args["color"].(string); ok {
		input.Color = color
	}
	if sortOrder, ok := args["sortOrder"].(float64); ok {
		input.SortOrder = int64(sortOrder)
	}
	if viewMode, ok := args["viewMode"].(string); ok {
		input.ViewMode = viewMode
	}
	if kind, ok := args["kind"].(string); ok {
		input.Kind = kind
	}

	return input
}

// RegisterProjectTools registers all project management tools with the MCP server.
func RegisterProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)

	if !readOnly {
		registerWriteTools(s, sc)
	}

	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	// List projects tool (read-only, always available)
	listProjectsTool := mcp.NewTool("ticktick_list_projects",
		mcp.WithDescription("List all TickTick projects for the authenticated user"),
	)

	s.AddTool(listProjectsTool, common.InstrumentedToolHandlerWithOperation("ticktick_list_projects", "list_projects", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		projects, err := client.Projects(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list projects: %v", err)), nil
		}

		result, _ := json.MarshalIndent(projects, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	// Get project tool
	getProjectTool := mcp.NewTool("ticktick_get_project",
		mcp.WithDescription("Get details of a specific TickTick project"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to retrieve"),
		),
	)

	s.AddTool(getProjectTool, common.InstrumentedToolHandlerWithOperation("ticktick_get_project", "get_project", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		project, err := client.Project(ctx, projectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
		}

		result, _ := json.MarshalIndent(project, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	// Get project data tool
	getProjectDataTool := mcp.NewTool("ticktick_get_project_data",
		mcp.WithDescription("Get a TickTick project together with its undone tasks and kanban columns"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to retrieve"),
		),
	)

	s.AddTool(getProjectDataTool, common.InstrumentedToolHandlerWithOperation("ticktick_get_project_data", "get_project_data", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		data, err := client.ProjectData(ctx, projectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get project data: %v", err)), nil
		}

		result, _ := json.MarshalIndent(data, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	// Create project tool
	createProjectTool := mcp.NewTool("ticktick_create_project",
		mcp.WithDescription("Create a new TickTick project"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the new project"),
		),
		mcp.WithString("color",
			mcp.Description("Project color as a hex string (e.g. '#F18181')"),
		),
		mcp.WithNumber("sortOrder",
			mcp.Description("Sort order value for the project"),
		),
		mcp.WithString("viewMode",
			mcp.Description("View mode: 'list', 'kanban' or 'timeline'"),
		),
		mcp.WithString("kind",
			mcp.Description("Project kind: 'TASK' or 'NOTE'"),
		),
	)

	s.AddTool(createProjectTool, common.InstrumentedToolHandlerWithOperation("ticktick_create_project", "create_project", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		input := projectInputFromArgs(args)
		if input.Name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		project, err := client.CreateProject(ctx, input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create project: %v", err)), nil
		}

		result, _ := json.MarshalIndent(project, "", "  ")
		return mcp.NewToolResultText(fmt.Sprintf("Project created successfully:\n%s", string(result))), nil
	}))

	// Update project tool
	updateProjectTool := mcp.NewTool("ticktick_update_project",
		mcp.WithDescription("Update an existing TickTick project"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to update"),
		),
		mcp.WithString("name",
			mcp.Description("New project name"),
		),
		mcp.WithString("color",
			mcp.Description("New project color as a hex string"),
		),
		mcp.WithNumber("sortOrder",
			mcp.Description("New sort order value"),
		),
		mcp.WithString("viewMode",
			mcp.Description("View mode: 'list', 'kanban' or 'timeline'"),
		),
		mcp.WithString("kind",
			mcp.Description("Project kind: 'TASK' or 'NOTE'"),
		),
	)

	s.AddTool(updateProjectTool, common.InstrumentedToolHandlerWithOperation("ticktick_update_project", "update_project", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		project, err := client.UpdateProject(ctx, projectID, projectInputFromArgs(args))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update project: %v", err)), nil
		}

		result, _ := json.MarshalIndent(project, "", "  ")
		return mcp.NewToolResultText(fmt.Sprintf("Project updated successfully:\n%s", string(result))), nil
	}))

	// Delete project tool
	deleteProjectTool := mcp.NewTool("ticktick_delete_project",
		mcp.WithDescription("Delete a TickTick project"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to delete"),
		),
	)

	s.AddTool(deleteProjectTool, common.InstrumentedToolHandlerWithOperation("ticktick_delete_project", "delete_project", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		if err := client.DeleteProject(ctx, projectID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete project: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Project %s deleted successfully", projectID)), nil
	}))
}
