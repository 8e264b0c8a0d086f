// Package resources implements MCP resources exposing read-only views
// of the authenticated TickTick account: the user profile and the
// project list.
package resources
