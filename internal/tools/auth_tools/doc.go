// Package auth_tools provides MCP tools for the TickTick OAuth flow.
//
// This package implements MCP (Model Context Protocol) tools that drive
// the authorization-code flow and inspect the local session state.
//
// # Available Tools
//
//   - ticktick_auth_url: Build an authorization URL to open in a browser
//   - ticktick_exchange_code: Exchange an authorization code for tokens
//   - ticktick_auth_status: Report the current authentication state
//   - ticktick_logout: Clear the persisted token
//   - ticktick_get_user: Fetch the authenticated user's profile
//
// Tokens are persisted to a single file on disk and refreshed
// transparently when tools need an API client.
package auth_tools
