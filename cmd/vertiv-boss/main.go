package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/app"
	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/config"
	"github.com/jkaberg/vertiv-boss/internal/mqtt"
	"github.com/jkaberg/vertiv-boss/internal/report"
	"github.com/jkaberg/vertiv-boss/internal/snmp"
	"github.com/jkaberg/vertiv-boss/internal/state"
	"github.com/jkaberg/vertiv-boss/internal/transmission"
	"github.com/jkaberg/vertiv-boss/internal/valuestore"
	"github.com/sirupsen/logrus"
)

// version is injected at build time via ldflags
var version = "dev"

// Replaced in tests.
var (
	exit             = os.Exit
	stdout io.Writer = os.Stdout
)

const envPrefix = "VERTIV_BOSS_"

type mode int

const (
	modeDaemon mode = iota
	modeOnce
	modeDebug
)

func main() {
	cfg, runMode, warnings := parseFlags()

	logger := setupLogger(cfg.Verbose || runMode == modeDebug)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err := cfg.Validate(); err != nil {
		fail(runMode, cfg, logger, "Invalid configuration", err)
		return
	}

	// Debug path ------------------------------------------------------------------
	if runMode == modeDebug {
		runDebugMode(cfg, logger)
		return
	}

	// Core clients ---------------------------------------------------------------
	snmpClient, err := snmp.NewClient(cfg.SNMP.Client(), logger)
	if err != nil {
		fail(runMode, cfg, logger, "Failed to create SNMP client", err)
		return
	}
	defer snmpClient.Close()

	store, closeStore, err := openValueStore(cfg, logger)
	if err != nil {
		snmpClient.Close()
		fail(runMode, cfg, logger, "Failed to open value store", err)
		return
	}
	defer closeStore()
	checker := check.NewChecker(valuestore.Prefixed(store, cfg.DeviceID))

	// Single cycle path -----------------------------------------------------------
	if runMode == modeOnce {
		r := app.Collect(context.Background(), cfg, snmpClient, checker, logger)
		if err := report.Print(stdout, r); err != nil {
			logger.WithError(err).Warn("Failed to print report")
		}
		closeStore()
		snmpClient.Close()
		exit(int(r.State))
		return
	}

	logger.WithFields(logrus.Fields{
		"version":   version,
		"device_id": cfg.DeviceID,
		"target":    cfg.SNMP.Target,
		"poll":      cfg.PollInterval,
		"mqtt_int":  cfg.MQTTInterval,
	}).Info("Starting vertiv-boss")

	if !snmpClient.IsHealthy() {
		logger.WithField("target", cfg.SNMP.Target).Warn("BOSS controller not answering yet; results stay UNKNOWN until it does")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
	}()

	// Transmitters ---------------------------------------------------------------
	var mqttTx *transmission.MQTTTransmitter
	if cfg.HasMQTT() {
		mqttClient, err := mqtt.NewClient(cfg.MQTTUrl, cfg.DeviceID, config.MQTTTimeout, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create MQTT client")
		}
		defer mqttClient.Disconnect(250)
		mqttTx = transmission.NewMQTTTransmitter(mqttClient, cfg.DeviceID, cfg.DiscoveryPrefix, version, logger)
		logger.Info("MQTT transmitter ready")
	} else {
		logger.Warn("No transmitters configured; results will only be logged")
	}

	// Run application ------------------------------------------------------------
	var tx transmission.Transmitter
	if mqttTx != nil {
		tx = mqttTx
	}
	app.Run(ctx, cfg, snmpClient, checker, tx, logger)

	if mqttTx != nil {
		if err := mqttTx.MarkOffline(); err != nil {
			logger.WithError(err).Warn("Failed to publish offline availability")
		}
	}
	logger.Info("vertiv-boss stopped")
}

// -----------------------------------------------------------------------------
// Helpers & Flags
// -----------------------------------------------------------------------------

func parseFlags() (*config.Config, mode, []string) {
	cfg := config.GetDefaultConfig()

	configPath := getEnv("CONFIG", "")
	if p := configPathFromArgs(os.Args[1:]); p != "" {
		configPath = p
	}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vertiv-boss: %v\n", err)
			os.Exit(int(state.UNKNOWN))
		}
		cfg = loaded
	}

	showVersion := flag.Bool("version", false, "Show version and exit")
	once := flag.Bool("once", false, "Run a single check cycle, print it and exit with its state")
	debug := flag.Bool("debug", false, "Compare raw and decoded values and exit")
	flag.String("config", configPath, "YAML config file")

	flag.StringVar(&cfg.DeviceID, "device-id", getEnv("DEVICE_ID", cfg.DeviceID), "Device identifier")
	flag.StringVar(&cfg.SNMP.Target, "target", getEnv("TARGET", cfg.SNMP.Target), "BOSS controller host")
	flag.StringVar(&cfg.SNMP.Community, "community", getEnv("COMMUNITY", cfg.SNMP.Community), "SNMP community")
	flag.StringVar(&cfg.SNMP.Version, "snmp-version", getEnv("SNMP_VERSION", cfg.SNMP.Version), "SNMP version (1 or 2c)")
	port := flag.String("port", getEnv("PORT", strconv.Itoa(int(cfg.SNMP.Port))), "SNMP port")
	flag.StringVar(&cfg.MQTTUrl, "mqtt-url", getEnv("MQTT_URL", cfg.MQTTUrl), "MQTT URL")
	flag.StringVar(&cfg.DiscoveryPrefix, "discovery-prefix", getEnv("DISCOVERY_PREFIX", cfg.DiscoveryPrefix), "HA discovery prefix")
	flag.StringVar(&cfg.ValueStorePath, "value-store", getEnv("VALUE_STORE", cfg.ValueStorePath), "SQLite file for trend state (empty keeps it in memory)")
	flag.BoolVar(&cfg.Verbose, "verbose", getEnv("VERBOSE", strconv.FormatBool(cfg.Verbose)) == "true", "Verbose logging")

	pollIntervalStr := flag.String("poll-interval", getEnv("POLL_INTERVAL", ""), "SNMP poll interval (e.g. 60s)")
	mqttIntervalStr := flag.String("mqtt-interval", getEnv("MQTT_INTERVAL", ""), "MQTT interval (e.g. 60s)")
	forceUpdateIntervalStr := flag.String("force-update-interval", getEnv("FORCE_UPDATE_INTERVAL", ""), "Republish unchanged results at this interval (e.g. 10m, 0 = disabled)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("vertiv-boss %s\n", version)
		os.Exit(0)
	}

	warnings := applyOverrides(cfg, overrides{
		port:                *port,
		pollInterval:        *pollIntervalStr,
		mqttInterval:        *mqttIntervalStr,
		forceUpdateInterval: *forceUpdateIntervalStr,
	})

	switch {
	case *debug:
		return cfg, modeDebug, warnings
	case *once:
		return cfg, modeOnce, warnings
	}
	return cfg, modeDaemon, warnings
}

// overrides holds the string-typed flag values that need parsing.
type overrides struct {
	port                string
	pollInterval        string
	mqttInterval        string
	forceUpdateInterval string
}

// applyOverrides parses o into cfg. Unparsable values keep the current
// setting and are returned as warnings to log once the logger exists.
func applyOverrides(cfg *config.Config, o overrides) []string {
	var warnings []string

	if o.port != "" {
		if v, err := strconv.ParseUint(o.port, 10, 16); err == nil && v > 0 {
			cfg.SNMP.Port = uint16(v)
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring invalid SNMP port %q, using %d", o.port, cfg.SNMP.Port))
		}
	}

	// Duration overrides
	if d, ok := parseInterval(o.pollInterval); ok && d > 0 {
		cfg.PollInterval = d
	} else if o.pollInterval != "" {
		warnings = append(warnings, fmt.Sprintf("ignoring invalid poll interval %q, using %s", o.pollInterval, cfg.PollInterval))
	}
	if d, ok := parseInterval(o.mqttInterval); ok && d > 0 {
		cfg.MQTTInterval = d
	} else if o.mqttInterval != "" {
		warnings = append(warnings, fmt.Sprintf("ignoring invalid MQTT interval %q, using %s", o.mqttInterval, cfg.MQTTInterval))
	}
	if d, ok := parseInterval(o.forceUpdateInterval); ok {
		cfg.ForceUpdateInterval = d
	} else if o.forceUpdateInterval != "" {
		warnings = append(warnings, fmt.Sprintf("ignoring invalid force update interval %q", o.forceUpdateInterval))
	}
	return warnings
}

// parseInterval accepts a Go duration ("90s") or plain seconds ("90").
func parseInterval(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d, true
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

// configPathFromArgs finds -config before flag parsing so the file can
// provide the flag defaults.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func setupLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

func openValueStore(cfg *config.Config, logger *logrus.Logger) (valuestore.Store, func(), error) {
	if !cfg.HasPersistentStore() {
		logger.Debug("Keeping trend state in memory")
		return valuestore.NewMemory(), func() {}, nil
	}

	db, err := valuestore.NewSQLite(cfg.ValueStorePath)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("path", cfg.ValueStorePath).Debug("Value store opened")

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close value store")
		}
	}, nil
}

// fail ends the process after a start-up error. -once prints an UNKNOWN
// report and exits with its code; the other modes log fatally.
func fail(runMode mode, cfg *config.Config, logger *logrus.Logger, msg string, err error) {
	if runMode == modeOnce {
		r := check.FailedReport(cfg.DeviceID, time.Now(), err)
		_ = report.Print(stdout, r)
		exit(int(state.UNKNOWN))
		return
	}
	logger.WithError(err).Fatal(msg)
}

func runDebugMode(cfg *config.Config, logger *logrus.Logger) {
	client, err := snmp.NewClient(cfg.SNMP.Client(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Debug mode failed")
	}
	defer client.Close()

	if err := client.CompareAllSensors(); err != nil {
		logger.WithError(err).Fatal("Debug mode failed")
	}

	checker := check.NewChecker(valuestore.NewMemory())
	r := app.Collect(context.Background(), cfg, client, checker, logger)
	if err := report.Print(stdout, r); err != nil {
		logger.WithError(err).Warn("Failed to print report")
	}
}
