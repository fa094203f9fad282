package routing

import (
	"testing"
	"time"

	"github.com/meshnetframework/meshnet/types"
)

func TestStatsTrackerRecordsAndResets(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Record(types.Route{0, 1, 2}, 2*time.Millisecond)
	tracker.Record(nil, 2*time.Millisecond)

	stats := tracker.Snapshot()
	if stats.TotalRoutes != 2 || stats.SuccessfulRoutes != 1 || stats.FailedRoutes != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.TotalHops != 2 || stats.AvgHops != 2.0 {
		t.Errorf("hop accounting wrong: %+v", stats)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %f", stats.SuccessRate)
	}
	if stats.AvgLatency != 0.002 {
		t.Errorf("expected avg latency 0.002, got %f", stats.AvgLatency)
	}

	tracker.Reset()
	if tracker.Snapshot().TotalRoutes != 0 {
		t.Errorf("reset left counters behind")
	}
}
