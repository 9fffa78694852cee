package pulse

import (
	"testing"

	"pulsetrain/core"
)

// walk drives a Run without hardware and returns the absolute time of every
// transition along with the phase entered
type transition struct {
	at    uint32
	phase Phase
	step  Step
}

func walk(cfg Config, limit int) ([]transition, *Run) {
	cfg.Normalize()
	r := &Run{}
	step := r.Begin(cfg, Resolve(cfg.CarrierPeriodUS, cfg.DutyPercent))
	now := uint32(0)
	out := []transition{{at: now, phase: r.Phase, step: step}}
	for i := 0; i < limit && !step.Done; i++ {
		now += step.DelayUS
		step = r.Advance()
		out = append(out, transition{at: now, phase: r.Phase, step: step})
	}
	return out, r
}

func TestRunFullDutyScenario(t *testing.T) {
	cfg := Config{PulseUS: 1000, IPIUS: 500, PulsesPerTrain: 3, ITIUS: 2000, DutyPercent: 100, CarrierHz: 10000, Trains: 2}
	steps, run := walk(cfg, 1000)

	last := steps[len(steps)-1]
	if !last.step.Done {
		t.Fatal("Run never finished")
	}
	if last.at != 10000 {
		t.Errorf("Expected run to end at 10000us, ended at %d", last.at)
	}
	if run.TrainsCompleted != 2 {
		t.Errorf("Expected 2 trains completed, got %d", run.TrainsCompleted)
	}
	if run.Phase != Idle {
		t.Errorf("Expected Idle, got %v", run.Phase)
	}

	for _, tr := range steps {
		if tr.phase == CarrierLow {
			t.Fatalf("100%% duty entered CARRIER_LOW at %d", tr.at)
		}
		if tr.phase == CarrierHigh && tr.step.DelayUS > 100 {
			t.Fatalf("Segment longer than carrier period at %d: %d", tr.at, tr.step.DelayUS)
		}
	}

	trainsDone := 0
	for _, tr := range steps {
		if tr.step.TrainDone {
			trainsDone++
			if trainsDone == 1 && tr.at != 4000 {
				t.Errorf("First train expected to finish at 4000, got %d", tr.at)
			}
		}
	}
	if trainsDone != 2 {
		t.Errorf("Expected 2 TrainDone steps, got %d", trainsDone)
	}
}

func TestRunZeroDutyStaysLow(t *testing.T) {
	cfg := Config{PulseUS: 250, IPIUS: 10, PulsesPerTrain: 2, ITIUS: 10, DutyPercent: 0, CarrierHz: 10000, Trains: 1}
	steps, _ := walk(cfg, 100)

	if steps[0].phase != CarrierLow {
		t.Errorf("0%% duty should enter CARRIER_LOW, got %v", steps[0].phase)
	}
	for _, tr := range steps {
		if tr.phase == CarrierHigh {
			t.Fatalf("0%% duty entered CARRIER_HIGH at %d", tr.at)
		}
		if tr.step.Levels.Carrier {
			t.Fatalf("Carrier raised at %d with 0%% duty", tr.at)
		}
		if tr.phase == CarrierLow && !tr.step.Levels.Window {
			t.Fatalf("Window indicator low inside window at %d", tr.at)
		}
	}
	// 2 windows of 250 + 10 IPI
	if end := steps[len(steps)-1].at; end != 510 {
		t.Errorf("Expected end at 510, got %d", end)
	}
}

func TestRunTruncatesLastSegment(t *testing.T) {
	// Period 100, 30% duty: 30 high / 70 low. A 250us window holds
	// 30+70+30+70 = 200 plus a 30us high and a 20us truncated low.
	cfg := Config{PulseUS: 250, PulsesPerTrain: 1, DutyPercent: 30, CarrierHz: 10000, Trains: 1}
	steps, _ := walk(cfg, 100)

	var inWindow []uint32
	for _, tr := range steps {
		if tr.phase.InWindow() {
			inWindow = append(inWindow, tr.step.DelayUS)
		}
	}
	want := []uint32{30, 70, 30, 70, 30, 20}
	if !equalTimes(inWindow, want) {
		t.Errorf("Expected segments %v, got %v", want, inWindow)
	}

	total := uint32(0)
	for _, d := range inWindow {
		total += d
	}
	if total != 250 {
		t.Errorf("Window scheduled %dus, want 250", total)
	}
}

func TestRunUnboundedNeverFinishes(t *testing.T) {
	cfg := Config{PulseUS: 10, IPIUS: 5, PulsesPerTrain: 2, ITIUS: 20, DutyPercent: 50, CarrierHz: 100000, Trains: 0}
	steps, run := walk(cfg, 5000)

	if steps[len(steps)-1].step.Done {
		t.Fatal("Unbounded run finished")
	}
	if run.TrainsRemaining != 0 {
		t.Errorf("Unbounded trains remaining changed to %d", run.TrainsRemaining)
	}
	if run.TrainsCompleted == 0 {
		t.Error("No trains completed")
	}

	// Completed count goes up by exactly one per train
	count := uint32(0)
	for _, tr := range steps {
		if tr.step.TrainDone {
			count++
		}
	}
	if count != run.TrainsCompleted {
		t.Errorf("TrainDone steps %d != completed counter %d", count, run.TrainsCompleted)
	}
}

func TestRunLevels(t *testing.T) {
	tests := []struct {
		phase Phase
		want  core.Levels
	}{
		{Idle, core.AllLow},
		{CarrierHigh, core.Levels{Carrier: true, Window: true, Train: true}},
		{CarrierLow, core.Levels{Window: true, Train: true}},
		{BetweenPulses, core.Levels{Train: true}},
		{BetweenTrains, core.AllLow},
	}
	for _, test := range tests {
		r := Run{Phase: test.phase}
		if got := r.Levels(); got != test.want {
			t.Errorf("%v levels = %+v, want %+v", test.phase, got, test.want)
		}
	}
}

func TestAdvanceFromIdle(t *testing.T) {
	r := &Run{}
	step := r.Advance()
	if !step.Done || step.Levels != core.AllLow {
		t.Errorf("Advance from Idle should be a terminal no-op, got %+v", step)
	}
}

func TestPhaseString(t *testing.T) {
	if CarrierHigh.String() != "CARRIER_HIGH" {
		t.Errorf("Unexpected name %q", CarrierHigh.String())
	}
	if Phase(42).String() != "UNKNOWN" {
		t.Errorf("Unexpected name for invalid phase %q", Phase(42).String())
	}
}
