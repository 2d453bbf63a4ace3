package snmp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/sirupsen/logrus"
	"github.com/soniah/gosnmp"
)

// ErrNotDetected is returned when the device does not expose the BOSS
// subtree.
var ErrNotDetected = errors.New("BOSS subtree not found on device")

// Session is the subset of *gosnmp.GoSNMP the client needs.
type Session interface {
	GetNext(oids []string) (*gosnmp.SnmpPacket, error)
	WalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

// Config is the SNMP transport configuration.
type Config struct {
	Target    string
	Port      uint16
	Community string
	Version   string // "1" or "2c"
	Timeout   time.Duration
	Retries   int
}

// Client polls a BOSS controller over SNMP.
type Client struct {
	session Session
	bulk    bool
	closeFn func() error
	logger  *logrus.Logger
}

// NewClient creates a connected SNMP client.
func NewClient(cfg Config, logger *logrus.Logger) (*Client, error) {
	if cfg.Target == "" {
		return nil, errors.New("snmp client: target required")
	}

	version, err := parseVersion(cfg.Version)
	if err != nil {
		return nil, err
	}

	g := &gosnmp.GoSNMP{
		Target:    cfg.Target,
		Port:      cfg.Port,
		Community: cfg.Community,
		Version:   version,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", cfg.Target, cfg.Port, err)
	}

	logger.WithFields(logrus.Fields{
		"target":  cfg.Target,
		"port":    cfg.Port,
		"version": cfg.Version,
	}).Debug("SNMP session opened")

	return &Client{
		session: g,
		bulk:    version != gosnmp.Version1,
		closeFn: func() error { return g.Conn.Close() },
		logger:  logger,
	}, nil
}

// NewClientWithSession wraps an existing session. bulk selects GETBULK walks,
// which are not available with SNMPv1.
func NewClientWithSession(session Session, bulk bool, logger *logrus.Logger) *Client {
	return &Client{session: session, bulk: bulk, logger: logger}
}

func parseVersion(v string) (gosnmp.SnmpVersion, error) {
	switch v {
	case "1", "v1":
		return gosnmp.Version1, nil
	case "", "2c", "v2c":
		return gosnmp.Version2c, nil
	default:
		return 0, fmt.Errorf("unsupported SNMP version %q (supported: 1, 2c)", v)
	}
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn()
}

// Detect reports whether the device exposes anything below sensors.BaseOID.
func (c *Client) Detect() error {
	pkt, err := c.session.GetNext([]string{sensors.BaseOID})
	if err != nil {
		return fmt.Errorf("detect request failed: %w", err)
	}
	if pkt == nil || len(pkt.Variables) == 0 {
		return ErrNotDetected
	}

	pdu := pkt.Variables[0]
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return ErrNotDetected
	}
	if !strings.HasPrefix(normalizeOID(pdu.Name), sensors.BaseOID+".") {
		return ErrNotDetected
	}
	return nil
}

// FetchTable walks every sensor column and returns one row per instance.
func (c *Client) FetchTable() (sensors.StringTable, error) {
	columns := make([]map[string]string, 0, len(sensors.AllSensors))
	var indices []string
	seen := make(map[string]bool)

	for _, oid := range sensors.ColumnOIDs() {
		pdus, err := c.walk(oid)
		if err != nil {
			return nil, fmt.Errorf("walk %s failed: %w", oid, err)
		}

		col := make(map[string]string, len(pdus))
		for _, pdu := range pdus {
			index, ok := instanceIndex(oid, pdu.Name)
			if !ok {
				continue
			}
			value, ok := pduString(pdu)
			if !ok {
				continue
			}
			col[index] = value
			if !seen[index] {
				seen[index] = true
				indices = append(indices, index)
			}
		}
		columns = append(columns, col)
	}

	return buildTable(indices, columns), nil
}

func (c *Client) walk(oid string) ([]gosnmp.SnmpPDU, error) {
	if c.bulk {
		return c.session.BulkWalkAll(oid)
	}
	return c.session.WalkAll(oid)
}

// Poll runs detection, fetches the table and decodes it.
func (c *Client) Poll() (sensors.Section, error) {
	c.logger.Debug("Polling BOSS controller...")

	if err := c.Detect(); err != nil {
		return nil, err
	}

	table, err := c.FetchTable()
	if err != nil {
		return nil, fmt.Errorf("SNMP fetch failed: %w", err)
	}

	section, err := sensors.Parse(table)
	if err != nil {
		return nil, err
	}

	for _, warning := range sensors.ValidateSection(section) {
		c.logger.Warn(warning)
	}

	c.logger.WithFields(logrus.Fields{
		"rows":   len(table),
		"values": len(section),
	}).Debug("Successfully parsed BOSS section")

	return section, nil
}

// IsHealthy checks if the device answers and exposes the BOSS subtree.
func (c *Client) IsHealthy() bool {
	return c.Detect() == nil
}

// CompareAllSensors fetches the table and logs raw vs decoded values.
func (c *Client) CompareAllSensors() error {
	c.logger.Info("Querying BOSS controller to compare raw vs parsed values...")

	if err := c.Detect(); err != nil {
		return err
	}
	table, err := c.FetchTable()
	if err != nil {
		return fmt.Errorf("failed to fetch table: %w", err)
	}

	section, err := sensors.Parse(table)
	if err != nil {
		c.logger.WithError(err).Warn("Decoding failed; showing raw values only")
	}
	sensors.CompareRawVsParsed(table, section, c.logger)
	return nil
}
