package progress

import (
	"errors"
	"testing"
)

func TestTrackerTick(t *testing.T) {
	tracker := NewTracker("processing", 3)

	tracker.Tick()
	tracker.Tick()
	if got := tracker.bar.State().CurrentNum; got != 2 {
		t.Errorf("current = %d, want 2", got)
	}

	tracker.Tick()
	tracker.FinishSuccess()
}

func TestTrackerFinishError(t *testing.T) {
	tracker := NewTracker("processing", 1)
	tracker.Tick()
	tracker.FinishError(errors.New("bad file"))
}

func TestSpinner(t *testing.T) {
	spinner := NewSpinner("scanning")
	spinner.Tick()
	spinner.Tick()
	spinner.FinishSuccess()
}
