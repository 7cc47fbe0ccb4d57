package config

import "strings"

// Option describes a single configuration entry: its viper key, the
// corresponding CLI flag name, the compiled default, and a human-readable
// description shown in --help output.
type Option struct {
	Key         string
	Flag        string
	Default     any
	Description string
}

// Options defines every configuration entry nexumd/nexumctl expose. Each
// entry is registered as a viper default and a CLI flag.
var Options = []Option{
	{Key: keyRuntimeDir, Flag: toFlag(keyRuntimeDir), Default: "", Description: "Ambient runtime directory used to derive the routing socket default"},
	{Key: keySocketPath, Flag: toFlag(keySocketPath), Default: "", Description: "Routing daemon Unix-domain socket path (derived from runtime-dir if empty)"},
	{Key: keyRegistryPath, Flag: toFlag(keyRegistryPath), Default: "/var/lib/nexum/nexum.db", Description: "Capsule registry database path"},
	{Key: keyEventsPath, Flag: toFlag(keyEventsPath), Default: "/var/lib/nexum/events.db", Description: "Event log database path"},
	{Key: keyFlagsPath, Flag: toFlag(keyFlagsPath), Default: "/var/lib/nexum/cutover.flags", Description: "Cutover flag file path"},
	{Key: keyTLSDir, Flag: toFlag(keyTLSDir), Default: "/var/lib/nexum/tls", Description: "Directory holding per-domain TLS material"},
	{Key: keyPortRangeStart, Flag: toFlag(keyPortRangeStart), Default: 20000, Description: "Lowest port handed out by the allocator"},
	{Key: keyPortRangeEnd, Flag: toFlag(keyPortRangeEnd), Default: 20999, Description: "Highest port handed out by the allocator"},
	{Key: keyMinParityScore, Flag: toFlag(keyMinParityScore), Default: 0.95, Description: "Minimum shadow parity score required to admit cutover"},
	{Key: keyMaxCriticalEvents, Flag: toFlag(keyMaxCriticalEvents), Default: 0, Description: "Maximum critical events tolerated before cutover is denied"},
	{Key: keyBlockerThreshold, Flag: toFlag(keyBlockerThreshold), Default: 1, Description: "Critical-event count at or above which a capsule is a blocker"},
	{Key: keyLogLevel, Flag: toFlag(keyLogLevel), Default: "info", Description: "Log level (debug, info, warn, error)"},
	{Key: keyLogJSON, Flag: toFlag(keyLogJSON), Default: false, Description: "Output logs in JSON format"},
}

// toFlag converts a viper key like "cutover.min_parity_score" into a CLI
// flag like "cutover-min-parity-score" by lower-casing and replacing
// dots and underscores with hyphens.
func toFlag(key string) string {
	flag := strings.ToLower(key)
	flag = strings.ReplaceAll(flag, ".", "-")
	flag = strings.ReplaceAll(flag, "_", "-")
	return flag
}
