// Package config holds the configuration of the catalogd binary.
package config

import (
	"strings"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

// EnvPrefix prefixes every environment variable read by catalogd.
const EnvPrefix = "CATALOGD"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Database   config.DatabaseConfig  `koanf:"database"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Nats       config.NATSConfig      `koanf:"nats"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
}

// Defaults lets catalogd start with no config file: in-memory store, no broker, no tracing.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                       8080,
		"server.maxheaderbytes":             1 << 20,
		"server.timeout.read":               5 * time.Second,
		"server.timeout.write":              10 * time.Second,
		"server.timeout.idle":               60 * time.Second,
		"server.timeout.readheader":         2 * time.Second,
		"database.timeout":                  10 * time.Second,
		"database.migrate":                  true,
		"log.level":                         "info",
		"pprof.addr":                        "localhost:6060",
		"nats.stream":                       "CATALOG",
		"nats.timeout":                      5 * time.Second,
		"telemetry.traces.otlphttp.timeout": 10 * time.Second,
		"shutdown.timeout":                  10 * time.Second,
	}
}

// Load reads the catalogd configuration.
func Load(opts ...configloader.Option) (*Config, error) {
	opts = append([]configloader.Option{configloader.WithDefaults(Defaults())}, opts...)
	return configloader.Load[*Config](EnvPrefix, opts...)
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return c.Shutdown.Validate()
}
