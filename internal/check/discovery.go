// Package check turns a decoded BOSS section into monitored services and
// evaluates each of them.
package check

import (
	"fmt"

	"github.com/jkaberg/vertiv-boss/internal/sensors"
)

// ServicePrefix is prepended to every item to form the service description.
const ServicePrefix = "BOSS"

// Service is one monitorable item found by discovery.
type Service struct {
	Item string
}

// Name returns the service description, e.g. "BOSS Unit Status".
func (s Service) Name() string {
	return fmt.Sprintf("%s %s", ServicePrefix, s.Item)
}

// Discover yields one Service per decoded value, named after the sensor
// label, in table order.
func Discover(section sensors.Section) []Service {
	services := make([]Service, 0, len(section))
	for i := range section {
		if i >= len(sensors.AllSensors) {
			break
		}
		services = append(services, Service{Item: sensors.AllSensors[i].Label})
	}
	return services
}
