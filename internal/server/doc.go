// Package server provides the MCP server context and supporting HTTP
// servers for the ticktick-mcp application.
//
// ServerContext wires the OAuth session manager, the TickTick API client
// factory, and the metrics recorder together so tool handlers receive
// their dependencies explicitly instead of reaching for globals. API
// clients are constructed per call with a freshly validated access
// token, which keeps token refresh transparent to the tools.
//
// MetricsServer serves Prometheus metrics and health probes on a
// dedicated port, isolated from the MCP transport.
package server
