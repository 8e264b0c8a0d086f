package auth_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// parseScopes splits a comma-separated scope string, dropping empty entries.
func parseScopes(s string) []string {
	if s == "" {
		return nil
	}

	var scopes []string
	for _, scope := range strings.Split(s, ",") {
		scope = strings.TrimSpace(scope)
		if scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// RegisterAuthTools registers all authentication tools with the MCP server.
// Auth tools are always available regardless of read-only mode; without
// them there is no way to establish a session.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	registerAuthURLTool(s, sc)
	registerExchangeCodeTool(s, sc)
	registerAuthStatusTool(s, sc)
	registerLogoutTool(s, sc)
	registerGetUserTool(s, sc)
	return nil
}

func registerAuthURLTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	authURLTool := mcp.NewTool("ticktick_auth_url",
		mcp.WithDescription("Build a TickTick OAuth authorization URL. Open the URL in a browser, sign in, and copy the authorization code from the redirect."),
		mcp.WithString("scopes",
			mcp.Description("Comma-separated OAuth scopes (default: 'tasks:read,tasks:write')"),
		),
		mcp.WithString("state",
			mcp.Description("CSRF state parameter. A random value is generated when omitted."),
		),
	)

	s.AddTool(authURLTool, common.InstrumentedToolHandler("ticktick_auth_url", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		scopesArg, _ := args["scopes"].(string)
		stateArg, _ := args["state"].(string)

		url, state, err := sc.AuthManager().AuthorizationURL(parseScopes(scopesArg), stateArg)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to build authorization URL: %v", err)), nil
		}

		result, _ := json.MarshalIndent(map[string]string{
			"url":   url,
			"state": state,
		}, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))
}

func registerExchangeCodeTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	exchangeTool := mcp.NewTool("ticktick_exchange_code",
		mcp.WithDescription("Exchange an OAuth authorization code for tokens and persist them. Completes the flow started by ticktick_auth_url."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The authorization code from the OAuth redirect"),
		),
	)

	s.AddTool(exchangeTool, common.InstrumentedToolHandler("ticktick_exchange_code", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		code, ok := args["code"].(string)
		if !ok || code == "" {
			return mcp.NewToolResultError("code is required"), nil
		}

		manager := sc.AuthManager()

		tokens, err := manager.ExchangeCode(ctx, code)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to exchange authorization code: %v", err)), nil
		}

		stored, err := manager.StoreToken(tokens)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to persist token: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Authentication successful. Access token valid until %s.",
			stored.ExpiryTime().Format("2006-01-02 15:04:05 MST"),
		)), nil
	}))
}

func registerAuthStatusTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	statusTool := mcp.NewTool("ticktick_auth_status",
		mcp.WithDescription("Report the current authentication state: whether a token exists, whether it is expired, and when it expires."),
	)

	s.AddTool(statusTool, common.InstrumentedToolHandler("ticktick_auth_status", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, err := sc.AuthManager().AuthStatus()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read authentication status: %v", err)), nil
		}

		result, _ := json.MarshalIndent(status, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))
}

func registerLogoutTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	logoutTool := mcp.NewTool("ticktick_logout",
		mcp.WithDescription("Clear the persisted TickTick token. Subsequent API tools will require re-authentication."),
	)

	s.AddTool(logoutTool, common.InstrumentedToolHandler("ticktick_logout", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := sc.AuthManager().ClearToken(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to clear token: %v", err)), nil
		}

		return mcp.NewToolResultText("Logged out. The stored token has been cleared."), nil
	}))
}

func registerGetUserTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getUserTool := mcp.NewTool("ticktick_get_user",
		mcp.WithDescription("Fetch the authenticated TickTick user's profile. Useful to verify that authentication works."),
	)

	s.AddTool(getUserTool, common.InstrumentedToolHandlerWithOperation("ticktick_get_user", "get_user", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.APIClient(ctx)
		if err != nil {
			return mcp.NewToolResultError(common.AuthErrorMessage(err)), nil
		}

		user, err := client.User(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get user: %v", err)), nil
		}

		result, _ := json.MarshalIndent(user, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))
}
