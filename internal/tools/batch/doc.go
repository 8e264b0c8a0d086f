// Package batch provides shared helpers for MCP tools that operate on
// several TickTick entities in one call.
//
// It parses parameters that accept either a single ID or an array of IDs,
// runs a per-item operation collecting partial failures, and formats the
// aggregated outcome as JSON.
package batch
