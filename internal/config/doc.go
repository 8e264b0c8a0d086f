// Package config holds the process-wide configuration for ticktick-mcp.
//
// Configuration is read once from the environment at startup and passed
// around as immutable values; nothing in this package caches state after
// FromEnv returns. The Region type selects between the two TickTick brands
// (the global ticktick.com deployment and the Chinese dida365.com
// deployment), which use distinct OAuth and API hostnames but identical
// protocols.
package config
