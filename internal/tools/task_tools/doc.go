// Package task_tools provides MCP tools for managing TickTick tasks.
//
// # Available Tools
//
//   - ticktick_get_task: Get details of a specific task
//   - ticktick_create_task: Create a new task
//   - ticktick_update_task: Update a task
//   - ticktick_complete_task: Mark a task as completed
//   - ticktick_delete_task: Delete a task
//   - ticktick_batch_create_tasks: Create several tasks in one request
//   - ticktick_batch_complete_tasks: Complete several tasks, reporting partial failures
//   - ticktick_batch_delete_tasks: Delete several tasks, reporting partial failures
//
// Date arguments use the API's "yyyy-MM-dd'T'HH:mm:ssZ" string format
// (e.g. "2026-01-15T09:00:00+0000") and are passed through untouched.
//
// All write tools are only registered when the server runs with write
// access enabled.
package task_tools
