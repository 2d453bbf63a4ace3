package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/snmp"
	"github.com/jkaberg/vertiv-boss/internal/temperature"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the vertiv-boss agent
type Config struct {
	// Device Configuration
	DeviceID string     `yaml:"device_id"` // Unique device identifier, used in topics and value store keys
	SNMP     SNMPConfig `yaml:"snmp"`

	// Application Configuration
	Verbose      bool          `yaml:"verbose"`       // Enable verbose logging
	PollInterval time.Duration `yaml:"poll_interval"` // SNMP polling cadence

	// MQTT Configuration
	MQTTUrl         string        `yaml:"mqtt_url"`         // MQTT URL (supports both WebSocket and standard MQTT)
	DiscoveryPrefix string        `yaml:"discovery_prefix"` // Home Assistant discovery prefix
	MQTTInterval    time.Duration `yaml:"mqtt_interval"`    // Minimum time between MQTT state publications

	// ForceUpdateInterval republishes an unchanged report after this long; 0 disables
	ForceUpdateInterval time.Duration `yaml:"force_update_interval"`

	// Value store; empty keeps trend state in memory only
	ValueStorePath string `yaml:"value_store"`

	// Thresholds applied to every temperature item
	Temperature temperature.Params `yaml:"temperature"`
}

// SNMPConfig describes how to reach the BOSS controller.
type SNMPConfig struct {
	Target    string        `yaml:"target"`
	Port      uint16        `yaml:"port"`
	Community string        `yaml:"community"`
	Version   string        `yaml:"version"` // "1" or "2c"
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
}

// Client converts the config section into the SNMP client config.
func (s SNMPConfig) Client() snmp.Config {
	return snmp.Config{
		Target:    s.Target,
		Port:      s.Port,
		Community: s.Community,
		Version:   s.Version,
		Timeout:   s.Timeout,
		Retries:   s.Retries,
	}
}

// GetDefaultConfig returns a configuration with sensible defaults
func GetDefaultConfig() *Config {
	return &Config{
		DeviceID: "boss",
		SNMP: SNMPConfig{
			Port:      161,
			Community: "public",
			Version:   "2c",
			Timeout:   SNMPTimeout,
			Retries:   1,
		},
		Verbose:         false,
		PollInterval:    PollInterval,
		DiscoveryPrefix: "homeassistant",
		MQTTInterval:    MQTTTransmitInterval,
	}
}

// Load reads a YAML config file on top of the defaults. Keys missing from
// the file keep their default value.
func Load(path string) (*Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device ID is required")
	}
	if c.SNMP.Target == "" {
		return fmt.Errorf("SNMP target is required")
	}
	switch c.SNMP.Version {
	case "1", "v1", "2c", "v2c":
	default:
		return fmt.Errorf("SNMP version must be 1 or 2c, got %q", c.SNMP.Version)
	}
	if c.SNMP.Port == 0 {
		return fmt.Errorf("SNMP port is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if c.ForceUpdateInterval < 0 {
		return fmt.Errorf("force update interval must be >= 0")
	}

	// MQTT validation - support both WebSocket and standard MQTT protocols
	if c.MQTTUrl != "" {
		if !strings.HasPrefix(c.MQTTUrl, "ws://") &&
			!strings.HasPrefix(c.MQTTUrl, "wss://") &&
			!strings.HasPrefix(c.MQTTUrl, "mqtt://") &&
			!strings.HasPrefix(c.MQTTUrl, "mqtts://") {
			return fmt.Errorf("MQTT URL must use supported protocol (ws://, wss://, mqtt://, or mqtts://)")
		}
	}

	if err := c.Temperature.Validate(); err != nil {
		return fmt.Errorf("temperature: %w", err)
	}

	// Set defaults for invalid values
	if c.SNMP.Timeout <= 0 {
		c.SNMP.Timeout = SNMPTimeout
	}
	if c.MQTTInterval <= 0 {
		c.MQTTInterval = MQTTTransmitInterval
	}

	return nil
}

// HasMQTT returns true if MQTT is configured
func (c *Config) HasMQTT() bool {
	return c.MQTTUrl != ""
}

// HasPersistentStore returns true if trend state is kept on disk
func (c *Config) HasPersistentStore() bool {
	return c.ValueStorePath != ""
}
