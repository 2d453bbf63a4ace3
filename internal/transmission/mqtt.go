package transmission

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/mqtt"
	"github.com/sirupsen/logrus"
)

// MQTTTransmitter transmits check reports via MQTT
type MQTTTransmitter struct {
	client           Publisher
	deviceID         string
	discoveryPrefix  string
	swVersion        string
	logger           *logrus.Logger
	publishedSensors map[string]bool // Tracks published discovery configs
}

// HADiscoveryConfig represents Home Assistant MQTT discovery configuration
type HADiscoveryConfig struct {
	Name                string   `json:"name"`
	UniqueID            string   `json:"unique_id"`
	StateTopic          string   `json:"state_topic"`
	ValueTemplate       string   `json:"value_template,omitempty"`
	JSONAttributesTopic string   `json:"json_attributes_topic,omitempty"`
	JSONAttributesTmpl  string   `json:"json_attributes_template,omitempty"`
	DeviceClass         string   `json:"device_class,omitempty"`
	UnitOfMeasurement   string   `json:"unit_of_measurement,omitempty"`
	Device              HADevice `json:"device"`
	AvailabilityTopic   string   `json:"availability_topic"`
	Icon                string   `json:"icon,omitempty"`
	StateClass          string   `json:"state_class,omitempty"`
	EntityCategory      string   `json:"entity_category,omitempty"`
	PayloadOn           string   `json:"payload_on,omitempty"`
	PayloadOff          string   `json:"payload_off,omitempty"`
}

// HADevice represents the device information for Home Assistant
type HADevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

// SensorConfig defines the configuration for each entity
type SensorConfig struct {
	Name          string
	EntityID      string
	EntityType    string
	DeviceClass   string
	Unit          string
	Icon          string
	StateClass    string
	Category      string
	ValueTemplate string
	AttributesKey string // state payload key whose summary becomes entity attributes
}

// serviceState is the per-service entry of the state payload.
type serviceState struct {
	State   string   `json:"state"`
	Summary string   `json:"summary"`
	Value   *float64 `json:"value,omitempty"`
}

// NewMQTTTransmitter creates a new MQTT transmitter
func NewMQTTTransmitter(client Publisher, deviceID, discoveryPrefix, swVersion string, logger *logrus.Logger) *MQTTTransmitter {
	return &MQTTTransmitter{
		client:           client,
		deviceID:         deviceID,
		discoveryPrefix:  discoveryPrefix,
		swVersion:        swVersion,
		logger:           logger,
		publishedSensors: make(map[string]bool),
	}
}

func (t *MQTTTransmitter) device() HADevice {
	return HADevice{
		Identifiers:  []string{fmt.Sprintf("%s_%s", mqtt.TopicRoot, t.deviceID)},
		Name:         fmt.Sprintf("BOSS %s", t.deviceID),
		Model:        "CAREL BOSS",
		Manufacturer: "Vertiv",
		SWVersion:    t.swVersion,
	}
}

// publishDiscoveryForSensor publishes the discovery config for a single entity.
func (t *MQTTTransmitter) publishDiscoveryForSensor(sensor SensorConfig, device HADevice) error {
	uniqueID := fmt.Sprintf("%s_%s", t.deviceID, sensor.EntityID)

	// Skip if already published
	if t.publishedSensors[uniqueID] {
		return nil
	}

	stateTopic := mqtt.StateTopic(t.deviceID)
	config := HADiscoveryConfig{
		Name:              sensor.Name,
		UniqueID:          uniqueID,
		StateTopic:        stateTopic,
		ValueTemplate:     sensor.ValueTemplate,
		AvailabilityTopic: mqtt.AvailabilityTopic(t.deviceID),
		Device:            device,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.Unit,
		Icon:              sensor.Icon,
		StateClass:        sensor.StateClass,
		EntityCategory:    sensor.Category,
	}
	if sensor.AttributesKey != "" {
		config.JSONAttributesTopic = stateTopic
		config.JSONAttributesTmpl = fmt.Sprintf("{{ {'summary': value_json.%s.summary} | tojson }}", sensor.AttributesKey)
	}
	if sensor.EntityType == "binary_sensor" {
		config.PayloadOn = "ON"
		config.PayloadOff = "OFF"
	}

	topic := mqtt.DiscoveryTopic(t.discoveryPrefix, sensor.EntityType, t.deviceID, sensor.EntityID)
	if err := t.publishConfigRaw(topic, config); err != nil {
		return fmt.Errorf("failed to publish %s discovery config: %w", sensor.Name, err)
	}

	t.logger.WithFields(logrus.Fields{
		"sensor_name": sensor.Name,
		"entity_id":   sensor.EntityID,
		"topic":       topic,
	}).Info("Published sensor discovery config")

	t.publishedSensors[uniqueID] = true
	return nil
}

// publishDiscoveryConfigs ensures every discovered service has its discovery
// configs published.
func (t *MQTTTransmitter) publishDiscoveryConfigs(report *check.Report) error {
	device := t.device()

	problem := SensorConfig{
		Name:          "BOSS Problem",
		EntityID:      "problem",
		EntityType:    "binary_sensor",
		DeviceClass:   "problem",
		ValueTemplate: "{{ 'OFF' if value_json.state == 'OK' else 'ON' }}",
	}
	if err := t.publishDiscoveryForSensor(problem, device); err != nil {
		t.logger.WithError(err).Warn("Failed to publish problem discovery")
	}

	for _, sr := range report.Services {
		for _, config := range serviceEntities(sr) {
			if err := t.publishDiscoveryForSensor(config, device); err != nil {
				t.logger.WithError(err).WithField("sensor", config.Name).Error("Failed to publish discovery config")
				// Continue to the next entity
			}
		}
	}
	return nil
}

// publishConfigRaw publishes a raw configuration object
func (t *MQTTTransmitter) publishConfigRaw(topic string, config interface{}) error {
	payload, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal discovery config: %w", err)
	}

	if err := t.client.Publish(topic, payload, true); err != nil {
		return fmt.Errorf("failed to publish discovery config to %s: %w", topic, err)
	}
	return nil
}

// buildStatePayload builds the JSON payload for the state topic
func (t *MQTTTransmitter) buildStatePayload(report *check.Report) ([]byte, error) {
	state := make(map[string]interface{}, len(report.Services)+2)
	for _, sr := range report.Services {
		state[EntityID(sr.Service)] = serviceState{
			State:   sr.State.String(),
			Summary: sr.Summary(),
			Value:   sr.Value,
		}
	}
	state["state"] = report.State.String()
	state["timestamp"] = report.Timestamp.UTC().Format(time.RFC3339)

	return json.Marshal(state)
}

// Transmit sends a check report to MQTT
func (t *MQTTTransmitter) Transmit(report *check.Report) error {
	if !t.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	// Publish discovery config for the report's services if it hasn't been done
	if err := t.publishDiscoveryConfigs(report); err != nil {
		// Log error but don't block transmission
		t.logger.WithError(err).Error("Failed to publish Home Assistant discovery configs")
	}

	if err := t.publishState(report); err != nil {
		return fmt.Errorf("failed to publish check results: %w", err)
	}

	if err := t.publishAvailability(true); err != nil {
		return fmt.Errorf("failed to publish availability: %w", err)
	}

	t.logger.Debug("Data transmitted successfully")
	return nil
}

// publishState publishes the main state payload
func (t *MQTTTransmitter) publishState(report *check.Report) error {
	payload, err := t.buildStatePayload(report)
	if err != nil {
		return fmt.Errorf("failed to build state payload: %w", err)
	}

	topic := mqtt.StateTopic(t.deviceID)
	if err := t.client.Publish(topic, payload, true); err != nil {
		return fmt.Errorf("failed to publish state to %s: %w", topic, err)
	}

	t.logger.WithFields(logrus.Fields{
		"topic":   topic,
		"state":   report.State.String(),
		"payload": string(payload),
	}).Info("Published check results")
	return nil
}

// publishAvailability publishes the availability status
func (t *MQTTTransmitter) publishAvailability(online bool) error {
	payload := "online"
	if !online {
		payload = "offline"
	}

	topic := mqtt.AvailabilityTopic(t.deviceID)
	if err := t.client.Publish(topic, []byte(payload), true); err != nil {
		return fmt.Errorf("failed to publish availability to %s: %w", topic, err)
	}
	return nil
}

// MarkOffline publishes an offline availability, e.g. on shutdown or when
// reports went stale.
func (t *MQTTTransmitter) MarkOffline() error {
	if !t.client.IsConnected() {
		return nil
	}
	return t.publishAvailability(false)
}

// IsConnected checks if the MQTT client is connected
func (t *MQTTTransmitter) IsConnected() bool {
	return t.client.IsConnected()
}
