package config

import "time"

// Central place for all application-wide timing constants and other defaults.
// Changing a value here immediately affects all components that import
// github.com/jkaberg/vertiv-boss/internal/config.

const (
	// Polling / transmission intervals
	PollInterval         = 60 * time.Second // Poll the BOSS controller over SNMP
	MQTTTransmitInterval = 60 * time.Second // Publish data to MQTT

	// Operation time-outs (to avoid blocking goroutines)
	SNMPTimeout = 5 * time.Second // per SNMP request
	MQTTTimeout = 5 * time.Second // MQTT publish
)
