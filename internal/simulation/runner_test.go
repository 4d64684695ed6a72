package simulation

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/internal/model/entities"
	"github.com/arcticworks/icepump/internal/model/messages"
)

type fixedGenerator struct {
	reading messages.StateReading
	calls   int
}

func (g *fixedGenerator) Next(*entities.Station) messages.StateReading {
	g.calls++
	return g.reading
}

type recordingExecutor struct {
	decisions []model.PumpDecision
}

func (e *recordingExecutor) Execute(d model.PumpDecision) model.PumpResultEvent {
	e.decisions = append(e.decisions, d)
	return model.PumpResultEvent{Action: d.Action, FlowLpm: d.FlowLpm, Status: "OK"}
}

func sleepDecision(model.StateReading) model.PumpDecision {
	return model.PumpDecision{Action: model.ActionSleep, Reason: "test"}
}

func TestRunnerExecutesEveryCycle(t *testing.T) {
	gen := &fixedGenerator{reading: messages.StateReading{StationID: "station1", AirTempC: -25}}
	exec := &recordingExecutor{}
	r := &Runner{
		Station:   &entities.Station{ID: "station1"},
		Generator: gen,
		Evaluate:  sleepDecision,
		Executor:  exec,
		Cycles:    5,
		Interval:  time.Millisecond,
		Logger:    log.New(&bytes.Buffer{}, "", 0),
	}

	results := r.Run(context.Background())

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if gen.calls != 5 {
		t.Fatalf("expected 5 generator calls, got %d", gen.calls)
	}
	if len(exec.decisions) != 5 {
		t.Fatalf("expected 5 executions, got %d", len(exec.decisions))
	}
}

func TestRunnerStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before the first inter-cycle wait

	var buf bytes.Buffer
	r := &Runner{
		Station:   &entities.Station{ID: "station1"},
		Generator: &fixedGenerator{},
		Evaluate:  sleepDecision,
		Executor:  &recordingExecutor{},
		Cycles:    100,
		Interval:  time.Hour,
		Logger:    log.New(&buf, "", 0),
	}

	results := r.Run(ctx)

	if len(results) != 1 {
		t.Fatalf("expected exactly the first cycle to complete, got %d", len(results))
	}
	if !bytes.Contains(buf.Bytes(), []byte("interrupted")) {
		t.Fatalf("expected a graceful interruption message, log was:\n%s", buf.String())
	}
}

func TestLogExecutorSeverityAndEvents(t *testing.T) {
	cases := []struct {
		decision model.PumpDecision
		wantLog  string
	}{
		{model.PumpDecision{Action: model.ActionPump, FlowLpm: 21.0, Reason: "optimal"}, "pump engaged at 21.0 lpm"},
		{model.PumpDecision{Action: model.ActionStop, Reason: "bloom"}, "WARN"},
		{model.PumpDecision{Action: model.ActionSleep, Reason: "calm"}, "idle"},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		exec := NewLogExecutor("station1", log.New(&buf, "", 0))

		evt := exec.Execute(tc.decision)

		if evt.StationID != "station1" || evt.Action != tc.decision.Action || evt.Status != "OK" {
			t.Fatalf("unexpected result event %+v for %+v", evt, tc.decision)
		}
		if evt.FlowLpm != tc.decision.FlowLpm {
			t.Fatalf("flow %.1f not carried into result event", tc.decision.FlowLpm)
		}
		if !bytes.Contains(buf.Bytes(), []byte(tc.wantLog)) {
			t.Fatalf("log %q does not contain %q", buf.String(), tc.wantLog)
		}
	}
}
