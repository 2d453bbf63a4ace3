package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/config"
	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/jkaberg/vertiv-boss/internal/state"
	"github.com/jkaberg/vertiv-boss/internal/valuestore"
	"github.com/sirupsen/logrus"
)

type fakePoller struct {
	mu    sync.Mutex
	calls int
	row   []string
	err   error
}

func (f *fakePoller) Poll() (sensors.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return sensors.Parse(sensors.StringTable{f.row})
}

type fakeTransmitter struct {
	mu       sync.Mutex
	failures int
	reports  []*check.Report
	attempts int
	sent     chan struct{}
}

func newFakeTransmitter(failures int) *fakeTransmitter {
	return &fakeTransmitter{failures: failures, sent: make(chan struct{}, 16)}
}

func (f *fakeTransmitter) Transmit(r *check.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failures {
		return errors.New("broker down")
	}
	f.reports = append(f.reports, r)
	select {
	case f.sent <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeTransmitter) IsConnected() bool { return true }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.DeviceID = "boss1"
	cfg.PollInterval = 20 * time.Millisecond
	cfg.MQTTInterval = 10 * time.Millisecond
	return cfg
}

func TestCollect(t *testing.T) {
	poller := &fakePoller{row: []string{"13", "24.5", "18.0"}}
	checker := check.NewChecker(valuestore.NewMemory())

	report := Collect(context.Background(), testConfig(), poller, checker, quietLogger())
	if report.DeviceID != "boss1" {
		t.Errorf("DeviceID = %q", report.DeviceID)
	}
	if len(report.Services) != 3 {
		t.Fatalf("got %d services, want 3", len(report.Services))
	}
	if report.State != state.CRIT {
		t.Errorf("State = %v, want CRIT", report.State)
	}
}

func TestCollect_PollFailure(t *testing.T) {
	poller := &fakePoller{err: errors.New("request timeout")}
	checker := check.NewChecker(valuestore.NewMemory())

	report := Collect(context.Background(), testConfig(), poller, checker, quietLogger())
	if report.State != state.UNKNOWN {
		t.Fatalf("State = %v, want UNKNOWN", report.State)
	}
	if len(report.Services) != 1 || report.Services[0].Service.Item != check.AgentItem {
		t.Fatalf("unexpected services %+v", report.Services)
	}
	if report.Services[0].Summary() != "request timeout" {
		t.Errorf("summary = %q", report.Services[0].Summary())
	}
}

func runFor(t *testing.T, cfg *config.Config, poller Poller, tx *fakeTransmitter, want int) {
	t.Helper()
	schedulerTick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, cfg, poller, check.NewChecker(valuestore.NewMemory()), tx, quietLogger())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for got := 0; got < want; {
		select {
		case <-tx.sent:
			got++
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("timed out after %d of %d transmissions", got, want)
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_TransmitsReport(t *testing.T) {
	tx := newFakeTransmitter(0)
	runFor(t, testConfig(), &fakePoller{row: []string{"11", "22.0", "18.0"}}, tx, 1)

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if len(tx.reports) == 0 {
		t.Fatal("no report transmitted")
	}
	r := tx.reports[0]
	if r.State != state.OK || len(r.Services) != 3 {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestRun_RetriesAfterFailure(t *testing.T) {
	tx := newFakeTransmitter(2)
	runFor(t, testConfig(), &fakePoller{row: []string{"11", "22.0", "18.0"}}, tx, 1)

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.attempts < 3 {
		t.Fatalf("attempts = %d, want >= 3", tx.attempts)
	}
}

func TestRun_ForceUpdate(t *testing.T) {
	cfg := testConfig()
	cfg.ForceUpdateInterval = 15 * time.Millisecond

	tx := newFakeTransmitter(0)
	// Identical readings every cycle; only the forced update republishes.
	runFor(t, cfg, &fakePoller{row: []string{"11", "22.0", "18.0"}}, tx, 2)
}

// stallingPoller blocks on its second poll until release is closed.
type stallingPoller struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (p *stallingPoller) Poll() (sensors.Section, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.mu.Unlock()

	if n == 2 {
		<-p.release
	}
	return sensors.Parse(sensors.StringTable{{"11", "22.0", "18.0"}})
}

type offlineTransmitter struct {
	*fakeTransmitter
	marks   int
	offline chan struct{}
}

func (o *offlineTransmitter) MarkOffline() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.marks++
	select {
	case o.offline <- struct{}{}:
	default:
	}
	return nil
}

func TestRun_StaleReportMarksOffline(t *testing.T) {
	schedulerTick = 5 * time.Millisecond
	cfg := testConfig()

	poller := &stallingPoller{release: make(chan struct{})}
	tx := &offlineTransmitter{fakeTransmitter: newFakeTransmitter(0), offline: make(chan struct{}, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, cfg, poller, check.NewChecker(valuestore.NewMemory()), tx, quietLogger())
		close(done)
	}()
	released := false
	defer func() {
		if !released {
			close(poller.release)
		}
		cancel()
		<-done
	}()

	wait := func(ch <-chan struct{}, what string) {
		t.Helper()
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
		}
	}

	wait(tx.sent, "first transmission")
	wait(tx.offline, "offline mark")

	// Several more stale scheduler ticks must not mark offline again.
	time.Sleep(10 * cfg.PollInterval)
	tx.mu.Lock()
	marks := tx.marks
	tx.mu.Unlock()
	if marks != 1 {
		t.Fatalf("offline marks = %d, want 1", marks)
	}

	// The readings are identical, so only the offline flag forces a resend.
	close(poller.release)
	released = true
	wait(tx.sent, "transmission after recovery")

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.marks != 1 {
		t.Errorf("offline marks = %d, want 1", tx.marks)
	}
	if len(tx.reports) < 2 {
		t.Errorf("reports sent = %d, want >= 2", len(tx.reports))
	}
}
