package bus

import (
	"testing"

	"github.com/jkaberg/vertiv-boss/internal/check"
)

func TestPublishFanOut(t *testing.T) {
	b := New()
	s1 := b.Subscribe()
	s2 := b.Subscribe()

	r := &check.Report{DeviceID: "boss1"}
	b.Publish(r)

	if got := <-s1; got != r {
		t.Fatalf("subscriber 1 got %v", got)
	}
	if got := <-s2; got != r {
		t.Fatalf("subscriber 2 got %v", got)
	}
}

func TestPublishDoesNotBlock(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	first := &check.Report{DeviceID: "first"}
	b.Publish(first)
	b.Publish(&check.Report{DeviceID: "second"}) // buffer full, skipped

	if got := <-sub; got != first {
		t.Fatalf("expected first report, got %v", got.DeviceID)
	}
	select {
	case got := <-sub:
		t.Fatalf("unexpected extra report %v", got.DeviceID)
	default:
	}
}

func TestClose(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()

	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel")
	}
}
