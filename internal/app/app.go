package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/bus"
	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/config"
	"github.com/jkaberg/vertiv-boss/internal/domain"
	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/jkaberg/vertiv-boss/internal/transmission"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// schedulerTick is how often the scheduler looks at the latest report.
var schedulerTick = 1 * time.Second

// staleAfterPolls is how many missed poll intervals make a report stale.
const staleAfterPolls = 3

// Poller fetches and decodes one BOSS section.
type Poller interface {
	Poll() (sensors.Section, error)
}

// offliner is implemented by transmitters that can announce unavailability.
type offliner interface {
	MarkOffline() error
}

// Collect runs one polling cycle and returns its report. A failed poll
// yields a report with a single UNKNOWN agent service.
func Collect(ctx context.Context, cfg *config.Config, poller Poller, checker *check.Checker, logger *logrus.Logger) *check.Report {
	section, err := poller.Poll()
	if err != nil {
		logger.WithError(err).Warn("collector: poll failed")
		return check.FailedReport(cfg.DeviceID, checker.Now(), err)
	}
	if section == nil {
		logger.Warn("collector: device returned an empty table")
	}

	report := checker.Run(ctx, cfg.DeviceID, cfg.Temperature, section)
	logger.WithFields(logrus.Fields{
		"state":    report.State.String(),
		"services": len(report.Services),
	}).Debug("collector: cycle complete")
	return report
}

// Run launches the collector and scheduler and blocks until ctx is cancelled.
func Run(
	parentCtx context.Context,
	cfg *config.Config,
	poller Poller,
	checker *check.Checker,
	mqttTx transmission.Transmitter,
	logger *logrus.Logger,
) {
	messageBus := bus.New()
	// Subscribe before the collector starts so the first report is not lost.
	sub := messageBus.Subscribe()
	grp, ctx := errgroup.WithContext(parentCtx)

	// Collector -----------------------------------------------------------
	grp.Go(func() error {
		defer messageBus.Close()

		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			messageBus.Publish(Collect(ctx, cfg, poller, checker, logger))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	// Central scheduler ----------------------------------------------------

	type txState struct {
		tx       transmission.Transmitter
		interval time.Duration
		lastSent time.Time
		lastSnap *check.Report
		offline  bool
		name     string
	}

	var states []txState
	if mqttTx != nil {
		states = append(states, txState{
			tx:       mqttTx,
			interval: cfg.MQTTInterval,
			lastSent: time.Now().Add(-cfg.MQTTInterval),
			name:     "MQTT",
		})
	}

	staleAfter := staleAfterPolls * cfg.PollInterval

	grp.Go(func() error {
		var latest *check.Report
		ticker := time.NewTicker(schedulerTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snap, ok := <-sub:
				if !ok {
					return nil
				}
				latest = snap
			case <-ticker.C:
				if latest == nil {
					continue
				}
				now := time.Now()
				for i := range states {
					st := &states[i]

					if domain.Stale(latest, now, staleAfter) {
						markOffline(st.tx, &st.offline, st.name, logger)
						continue
					}

					if now.Sub(st.lastSent) < st.interval {
						continue
					}
					forced := cfg.ForceUpdateInterval > 0 && now.Sub(st.lastSent) >= cfg.ForceUpdateInterval
					if !forced && !st.offline && !domain.Changed(st.lastSnap, latest) {
						continue
					}
					if err := transmit(st.tx, latest); err != nil {
						logger.WithError(err).Warn(st.name + " transmit failed")
						// Reset lastSnap so the next interval retries even
						// without a data change.
						st.lastSnap = nil
					} else {
						st.lastSnap = latest
						st.offline = false
					}
					st.lastSent = now
				}
			}
		}
	})

	if err := grp.Wait(); err != nil && err != context.Canceled {
		logger.WithError(err).Warn("app: background group exited")
	}
}

func transmit(tx transmission.Transmitter, report *check.Report) error {
	if tx == nil || report == nil {
		return nil
	}
	if err := tx.Transmit(report); err != nil {
		return fmt.Errorf("transmit failed: %w", err)
	}
	return nil
}

func markOffline(tx transmission.Transmitter, offline *bool, name string, logger *logrus.Logger) {
	if *offline {
		return
	}
	o, ok := tx.(offliner)
	if !ok {
		return
	}
	if err := o.MarkOffline(); err != nil {
		logger.WithError(err).Warn(name + ": failed to mark offline")
		return
	}
	logger.Warn(name + ": latest report is stale, marked offline")
	*offline = true
}
