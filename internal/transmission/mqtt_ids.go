package transmission

import (
	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/sensors"
)

// EntityID returns the Home Assistant entity id used for a service, e.g.
// "return_temperature". It is also the key of the service in the state
// payload.
func EntityID(svc check.Service) string {
	return sensors.ToSnakeCase(svc.Item)
}

// serviceEntities lists the discovery entities for one service: a state
// entity for every service, plus a numeric entity for temperatures.
func serviceEntities(sr check.ServiceReport) []SensorConfig {
	id := EntityID(sr.Service)

	configs := []SensorConfig{{
		Name:          sr.Service.Name(),
		EntityID:      id + "_state",
		EntityType:    "sensor",
		Icon:          "mdi:hvac",
		ValueTemplate: "{{ value_json." + id + ".state }}",
		AttributesKey: id,
	}}

	if sr.Kind == sensors.KindTemperature {
		configs = append(configs, SensorConfig{
			Name:          sr.Service.Name(),
			EntityID:      id,
			EntityType:    "sensor",
			DeviceClass:   "temperature",
			Unit:          "°C",
			StateClass:    "measurement",
			ValueTemplate: "{{ value_json." + id + ".value }}",
		})
	}
	return configs
}
