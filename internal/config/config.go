package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/edhor1608/Nexum/internal/routing"
)

// Config wraps a viper instance and provides typed accessors for every
// configuration key. Create one via New().
type Config struct {
	v *viper.Viper
}

// New initializes a Config by loading values from environment
// variables, the config file, and compiled defaults (in that priority
// order; CLI flags, bound later via BindFlags, take highest priority).
func New() (*Config, error) {
	v := viper.New()

	for _, o := range Options {
		v.SetDefault(o.Key, o.Default)
	}

	v.SetConfigName("nexum")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/nexum/")

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !(errors.As(err, &notFoundErr) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	v.SetEnvPrefix("NEXUM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{v: v}, nil
}

// BindFlags registers a CLI flag for every Option and binds it to the
// underlying viper key so flag values take highest priority.
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	for _, o := range Options {
		switch v := o.Default.(type) {
		case string:
			fs.String(o.Flag, v, o.Description)
		case int:
			fs.Int(o.Flag, v, o.Description)
		case bool:
			fs.Bool(o.Flag, v, o.Description)
		case float64:
			fs.Float64(o.Flag, v, o.Description)
		default:
			return fmt.Errorf("config: unsupported flag type for key %s", o.Key)
		}
		if err := c.v.BindPFlag(o.Key, fs.Lookup(o.Flag)); err != nil {
			return fmt.Errorf("config: bind flag %s: %w", o.Flag, err)
		}
	}
	return nil
}

// RuntimeDir returns the ambient runtime directory, or "" if unset.
func (c *Config) RuntimeDir() string { return c.v.GetString(keyRuntimeDir) }

// SocketPath returns the routing daemon's socket path, resolving the
// runtime-dir-or-temp-dir default (nexumd.sock) when no explicit value
// was configured.
func (c *Config) SocketPath() string {
	if explicit := c.v.GetString(keySocketPath); explicit != "" {
		return explicit
	}
	return routing.ResolveSocketPath(c.RuntimeDir())
}

// RegistryPath returns the capsule registry database path.
func (c *Config) RegistryPath() string { return c.v.GetString(keyRegistryPath) }

// EventsPath returns the event log database path.
func (c *Config) EventsPath() string { return c.v.GetString(keyEventsPath) }

// FlagsPath returns the cutover flag file path.
func (c *Config) FlagsPath() string { return c.v.GetString(keyFlagsPath) }

// TLSDir returns the directory holding per-domain TLS material.
func (c *Config) TLSDir() string { return c.v.GetString(keyTLSDir) }

// PortRange returns the allocator's configured [start, end] bounds.
func (c *Config) PortRange() (int, int) {
	return c.v.GetInt(keyPortRangeStart), c.v.GetInt(keyPortRangeEnd)
}

// MinParityScore returns the minimum shadow parity score required to
// admit cutover.
func (c *Config) MinParityScore() float64 { return c.v.GetFloat64(keyMinParityScore) }

// MaxCriticalEvents returns the maximum critical events tolerated before
// cutover is denied.
func (c *Config) MaxCriticalEvents() uint32 { return uint32(c.v.GetUint(keyMaxCriticalEvents)) }

// BlockerThreshold returns the critical-event count at or above which a
// capsule is a supervisor blocker.
func (c *Config) BlockerThreshold() int { return c.v.GetInt(keyBlockerThreshold) }

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string { return c.v.GetString(keyLogLevel) }

// LogJSON reports whether logs should be emitted as JSON.
func (c *Config) LogJSON() bool { return c.v.GetBool(keyLogJSON) }
