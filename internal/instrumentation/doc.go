// Package instrumentation provides OpenTelemetry metrics and tracing for
// ticktick-mcp.
//
// The Provider wires a meter provider (Prometheus, OTLP or stdout exporter)
// and an optional tracer provider (OTLP, stdout or none) from
// environment-driven configuration. The Metrics recorder exposes typed
// methods for the events worth counting in this server: MCP tool
// invocations, TickTick API operations and OAuth token refreshes.
//
// Instrumentation is optional: with INSTRUMENTATION_ENABLED=false the
// Provider hands out no-op recorders and nothing is exported.
package instrumentation
