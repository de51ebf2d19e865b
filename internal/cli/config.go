package cli

import (
	"strings"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
	"github.com/abgdnv/catalog/pkg/messaging"
)

// EnvPrefix prefixes every environment variable read by catalogctl.
const EnvPrefix = "CATALOGCTL"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Gateway config.GatewayConfig `koanf:"gateway"`
	Log     config.LogConfig     `koanf:"log"`
	// Nats and Events are only needed by the eventos command.
	Nats   config.NATSConfig       `koanf:"nats"`
	Events config.SubscriberConfig `koanf:"events"`
}

func Defaults() map[string]any {
	return map[string]any{
		"gateway.baseurl":                            "http://localhost:8080",
		"gateway.timeout":                            10 * time.Second,
		"gateway.circuitbreaker.consecutivefailures": 5,
		"gateway.circuitbreaker.errorratepercent":    60,
		"gateway.circuitbreaker.maxrequests":         1,
		"gateway.circuitbreaker.opentimeout":         30 * time.Second,
		"log.level":                                  "warn",
		"nats.stream":                                "CATALOG",
		"nats.timeout":                               5 * time.Second,
		"events.subject":                             messaging.SubjectWildcard,
		"events.batch":                               10,
		"events.timeout":                             2 * time.Second,
		"events.interval":                            time.Second,
		"events.workers":                             1,
	}
}

// Load reads the catalogctl configuration.
func Load(opts ...configloader.Option) (*Config, error) {
	opts = append([]configloader.Option{configloader.WithDefaults(Defaults())}, opts...)
	return configloader.Load[*Config](EnvPrefix, opts...)
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Gateway.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Events.String())
	return b.String()
}

func (c *Config) Validate() error {
	if err := c.Gateway.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}
