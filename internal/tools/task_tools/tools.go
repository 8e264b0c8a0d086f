package task_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/logging"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/batch"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// parseReminders splits a comma-separated reminder trigger string.
func parseReminders(s string) []string {
	if s == "" {
		return nil
	}

	var reminders []string
	for _, r := range strings.Split(s, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			reminders = append(reminders, r)
		}
	}
	return reminders
}

// taskInputFromArgs builds a TaskInput from tool arguments. The items
// argument is a JSON array string of checklist items.
func taskInputFromArgs(args map[string]interface{}) (ticktick.TaskInput, error) {
	input := ticktick.TaskInput{}

	if title, ok := args["title"].(string); ok {
		input.Title = title
	}
	if projectID, ok := args["projectId"].(string); ok {
		input.ProjectID = projectID
	}
	if content, ok := args["content"].(string); ok {
		input.Content = content
	}
	if desc, ok := args["desc"].(string); ok {
		input.Desc = desc
	}
	if isAllDay, ok := args["isAllDay"].(bool); ok {
		input.IsAllDay = isAllDay
	}
	if startDate, ok := args["startDate"].(string); ok {
		input.StartDate = startDate
	}
	if dueDate, ok := args["dueDate"].(string); ok {
		input.DueDate = dueDate
	}
	if timeZone, ok := args["timeZone"].(string); ok {
		input.TimeZone = timeZone
	}
	if reminders, ok := args["reminders"].(string); ok {
		input.Reminders = parseReminders(reminders)
	}
	if repeatFlag, ok := args["repeatFlag"].(string); ok {
		input.RepeatFlag = repeatFlag
	}
	if priority, ok := args["priority"].(float64); ok {
		input.Priority = int(priority)
	}
	if sortOrder, ok := args["sortOrder"].(float64); ok {
		input.SortOrder = int64(sortOrder)
	}
	if items, ok := args["items"].(string); ok && items != "" {
		if err := json.Unmarshal([]byte(items), &input.Items); err != nil {
			return input, fmt.Errorf("items must be a JSON array of checklist items: %w", err)
		}
	}

	return input, nil
}

// taskInputOptions returns the shared tool options describing the
// writable task fields.
func taskInputOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("content",
			mcp.Description("Task content/notes"),
		),
		mcp.WithString("desc",
			mcp.Description("Description of a checklist task"),
		),
		mcp.WithBoolean("isAllDay",
			mcp.Description("Whether the task is an all-day task"),
		),
		mcp.WithString("startDate",
			mcp.Description("Start date in \"yyyy-MM-dd'T'HH:mm:ssZ\" format (e.g. '2026-01-15T09:00:00+0000')"),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date in \"yyyy-MM-dd'T'HH:mm:ssZ\" format"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone for the dates (e.g. 'Europe/Berlin')"),
		),
		mcp.WithString("reminders",
			mcp.Description("Comma-separated reminder triggers (e.g. 'TRIGGER:P0DT9H0M0S,TRIGGER:PT0S')"),
		),
		mcp.WithString("repeatFlag",
			mcp.Description("Recurrence rule (e.g. 'RRULE:FREQ=DAILY;INTERVAL=1')"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority: 0 none, 1 low, 3 medium, 5 high"),
		),
		mcp.WithNumber("sortOrder",
			mcp.Description("Sort order value for the task"),
		),
		mcp.WithString("items",
			mcp.Description(`Checklist items as a JSON array, e.g. '[{"title":"subtask 1"},{"title":"subtask 2"}]'`),
		),
	}
}

// RegisterTaskTools registers all task management tools with the MCP server.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerGetTaskTool(s, sc)

	if !readOnly {
		registerCreateTaskTool(s, sc)
		registerUpdateTaskTool(s, sc)
		registerCompleteTaskTool(s, sc)
		registerDeleteTaskTool(s, sc)
		registerBatchCreateTasksTool(s, sc)
		registerBatchCompleteTasksTool(s, sc)
		registerBatchDeleteTasksTool(s, sc)
	}

	return nil
}

func registerGetTaskTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getTaskTool := mcp.NewTool("ticktick_get_task",
		mcp.WithDescription("Get details of a specific TickTick task"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)

	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithOperation("ticktick_get_task", "get_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		task, err := client.Task(ctx, projectID, taskID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
		}

		result, _ := json.MarshalIndent(task, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))
}

func registerCreateTaskTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Create a new TickTick task"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the new task"),
		),
		mcp.WithString("projectId",
			mcp.Description("The ID of the project to create the task in (default: inbox)"),
		),
	}
	opts = append(opts, taskInputOptions()...)

	createTaskTool := mcp.NewTool("ticktick_create_task", opts...)

	s.AddTool(createTaskTool, common.InstrumentedToolHandlerWithOperation("ticktick_create_task", "create_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		input, err := taskInputFromArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if input.Title == "" {
			return mcp.NewToolResultError("title is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		task, err := client.CreateTask(ctx, input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
		}

		result, _ := json.MarshalIndent(task, "", "  ")
		return mcp.NewToolResultText(fmt.Sprintf("Task created successfully:\n%s", string(result))), nil
	}))
}

func registerUpdateTaskTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Update an existing TickTick task"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("title",
			mcp.Description("New task title"),
		),
	}
	opts = append(opts, taskInputOptions()...)

	updateTaskTool := mcp.NewTool("ticktick_update_task", opts...)

	s.AddTool(updateTaskTool, common.InstrumentedToolHandlerWithOperation("ticktick_update_task", "update_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		input, err := taskInputFromArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if input.ProjectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		task, err := client.UpdateTask(ctx, taskID, input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
		}

		result, _ := json.MarshalIndent(task, "", "  ")
		return mcp.NewToolResultText(fmt.Sprintf("Task updated successfully:\n%s", string(result))), nil
	}))
}

func registerCompleteTaskTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	completeTaskTool := mcp.NewTool("ticktick_complete_task",
		mcp.WithDescription("Mark a TickTick task as completed"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)

	s.AddTool(completeTaskTool, common.InstrumentedToolHandlerWithOperation("ticktick_complete_task", "complete_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		if err := client.CompleteTask(ctx, projectID, taskID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to complete task: %v", err)), nil
		}

		sc.Logger().Info("task completed", logging.Project(projectID), logging.Task(taskID))
		return mcp.NewToolResultText(fmt.Sprintf("Task %s completed successfully", taskID)), nil
	}))
}

func registerDeleteTaskTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	deleteTaskTool := mcp.NewTool("ticktick_delete_task",
		mcp.WithDescription("Delete a TickTick task"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the task"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)

	s.AddTool(deleteTaskTool, common.InstrumentedToolHandlerWithOperation("ticktick_delete_task", "delete_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		if err := client.DeleteTask(ctx, projectID, taskID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
		}

		sc.Logger().Info("task deleted", logging.Project(projectID), logging.Task(taskID))
		return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted successfully", taskID)), nil
	}))
}

func registerBatchCreateTasksTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	batchCreateTool := mcp.NewTool("ticktick_batch_create_tasks",
		mcp.WithDescription("Create several TickTick tasks in a single request"),
		mcp.WithString("tasks",
			mcp.Required(),
			mcp.Description(`Tasks as a JSON array, e.g. '[{"title":"task 1","projectId":"abc"},{"title":"task 2"}]'. Each entry requires a title.`),
		),
	)

	s.AddTool(batchCreateTool, common.InstrumentedToolHandlerWithOperation("ticktick_batch_create_tasks", "batch_create_tasks", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		tasksArg, ok := args["tasks"].(string)
		if !ok || tasksArg == "" {
			return mcp.NewToolResultError("tasks is required"), nil
		}

		var inputs []ticktick.TaskInput
		if err := json.Unmarshal([]byte(tasksArg), &inputs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tasks must be a JSON array of task objects: %v", err)), nil
		}
		if len(inputs) == 0 {
			return mcp.NewToolResultError("tasks must contain at least one task"), nil
		}
		for i, input := range inputs {
			if input.Title == "" {
				return mcp.NewToolResultError(fmt.Sprintf("tasks[%d] is missing a title", i)), nil
			}
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		created, err := client.BatchCreateTasks(ctx, inputs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create tasks: %v", err)), nil
		}

		result, _ := json.MarshalIndent(created, "", "  ")
		return mcp.NewToolResultText(fmt.Sprintf("%d tasks created successfully:\n%s", len(inputs), string(result))), nil
	}))
}

func registerBatchCompleteTasksTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	batchCompleteTool := mcp.NewTool("ticktick_batch_complete_tasks",
		mcp.WithDescription("Mark several TickTick tasks in one project as completed. Partial failures are reported per task."),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the tasks"),
		),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("A task ID or an array of task IDs to complete"),
		),
	)

	s.AddTool(batchCompleteTool, common.InstrumentedToolHandlerWithOperation("ticktick_batch_complete_tasks", "complete_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		taskIDs, err := batch.ParseStringOrArray(args["taskIds"], "taskIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		results := batch.Run(ctx, taskIDs, func(ctx context.Context, taskID string) (string, error) {
			if err := client.CompleteTask(ctx, projectID, taskID); err != nil {
				return "", err
			}
			return "completed", nil
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}))
}

func registerBatchDeleteTasksTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	batchDeleteTool := mcp.NewTool("ticktick_batch_delete_tasks",
		mcp.WithDescription("Delete several TickTick tasks in one project. Partial failures are reported per task."),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project containing the tasks"),
		),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("A task ID or an array of task IDs to delete"),
		),
	)

	s.AddTool(batchDeleteTool, common.InstrumentedToolHandlerWithOperation("ticktick_batch_delete_tasks", "delete_task", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		projectID, ok := args["projectId"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("projectId is required"), nil
		}

		taskIDs, err := batch.ParseStringOrArray(args["taskIds"], "taskIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		results := batch.Run(ctx, taskIDs, func(ctx context.Context, taskID string) (string, error) {
			if err := client.DeleteTask(ctx, projectID, taskID); err != nil {
				return "", err
			}
			return "deleted", nil
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}))
}
