// Package project_tools provides MCP tools for managing TickTick projects.
//
// # Available Tools
//
//   - ticktick_list_projects: List all projects
//   - ticktick_get_project: Get details of a specific project
//   - ticktick_get_project_data: Get a project with its tasks and columns
//   - ticktick_create_project: Create a new project
//   - ticktick_update_project: Update a project
//   - ticktick_delete_project: Delete a project
//
// Create, update, and delete tools are only registered when the server
// runs with write access enabled.
package project_tools
