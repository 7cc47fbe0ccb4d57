// Package config provides unified configuration loading from a YAML
// file, environment variables, and CLI flags using viper and pflag,
// modeled on otterscale-otterscale-agent's internal/config.
//
// Resolution order (highest wins):
//  1. CLI flags
//  2. Environment variables (prefix NEXUM_)
//  3. Config file (./nexum.yaml or /etc/nexum/nexum.yaml)
//  4. Compiled defaults
package config

// Viper keys for every daemon/orchestrator knob.
const (
	keyRuntimeDir        = "runtime_dir"
	keySocketPath        = "socket_path"
	keyRegistryPath      = "registry_path"
	keyEventsPath        = "events_path"
	keyFlagsPath         = "flags_path"
	keyTLSDir            = "tls_dir"
	keyPortRangeStart    = "ports.range_start"
	keyPortRangeEnd      = "ports.range_end"
	keyMinParityScore    = "cutover.min_parity_score"
	keyMaxCriticalEvents = "cutover.max_critical_events"
	keyBlockerThreshold  = "supervisor.blocker_threshold"
	keyLogLevel          = "log.level"
	keyLogJSON           = "log.json"
)
