// Package logging provides shared structured-logging helpers built on
// log/slog.
//
// It defines the canonical attribute keys used across the codebase
// (operation, tool, status, error, project_id, task_id) so that log lines
// from different packages stay queryable, plus a token sanitizer that keeps
// credentials out of log output.
package logging
