package transmission

import "github.com/jkaberg/vertiv-boss/internal/check"

// Transmitter defines the interface for transmitting check reports
type Transmitter interface {
	Transmit(report *check.Report) error
	IsConnected() bool
}

// Publisher is the subset of the MQTT client the transmitter needs.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
	IsConnected() bool
}
