package controller

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/arcticworks/icepump/internal/model"
)

func reading(solar, wind, temp, salinity float64) model.StateReading {
	return model.StateReading{
		StationID:   "station1",
		AirTempC:    temp,
		WindSpeedMs: wind,
		SalinityPSU: salinity,
		SolarWm2:    solar,
	}
}

func TestEvaluateScenarios(t *testing.T) {
	cases := []struct {
		name       string
		in         model.StateReading
		wantAction model.PumpAction
		wantFlow   float64
		wantReason string // substring
	}{
		{
			name:       "high solar stops regardless of ideal wind and temp",
			in:         reading(150.0, 10.0, -30.0, 30.0),
			wantAction: model.ActionStop,
			wantFlow:   0,
			wantReason: "bloom",
		},
		{
			name:       "calm wind sleeps",
			in:         reading(50.0, 2.0, -30.0, 30.0),
			wantAction: model.ActionSleep,
			wantFlow:   0,
			wantReason: "wind",
		},
		{
			name:       "warm air sleeps",
			in:         reading(50.0, 10.0, -15.0, 30.0),
			wantAction: model.ActionSleep,
			wantFlow:   0,
			wantReason: "slush",
		},
		{
			name:       "cold calm-free conditions pump at computed flow",
			in:         reading(50.0, 10.0, -30.0, 30.0),
			wantAction: model.ActionPump,
			wantFlow:   21.0, // 30*2.5 - 30*1.8
			wantReason: "optimal",
		},
		{
			name:       "negative computed flow floors to minimum viable rate",
			in:         reading(50.0, 10.0, -20.1, 35.0),
			wantAction: model.ActionPump,
			wantFlow:   10.0, // |−20.1|*2.5 − 35*1.8 = −12.75, floored
			wantReason: "optimal",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.in)
			if got.Action != tc.wantAction {
				t.Fatalf("action = %s, want %s", got.Action, tc.wantAction)
			}
			if got.FlowLpm != tc.wantFlow {
				t.Fatalf("flow = %.2f, want %.2f", got.FlowLpm, tc.wantFlow)
			}
			if !strings.Contains(got.Reason, tc.wantReason) {
				t.Fatalf("reason %q does not mention %q", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestSolarCutoffDominates(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		r := reading(
			100.0+rng.Float64()*100.0, // always above the cutoff
			rng.Float64()*15.0,
			-35.0+rng.Float64()*25.0,
			28.0+rng.Float64()*7.0,
		)
		// strictly above
		if r.SolarWm2 <= SolarStopWm2 {
			r.SolarWm2 = SolarStopWm2 + 0.01
		}
		got := Evaluate(r)
		if got.Action != model.ActionStop {
			t.Fatalf("solar=%.2f should always STOP, got %s (%+v)", r.SolarWm2, got.Action, r)
		}
		if got.FlowLpm != 0 {
			t.Fatalf("STOP must carry zero flow, got %.2f", got.FlowLpm)
		}
	}
}

func TestWindGateDominatesTemperature(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	for i := 0; i < 1000; i++ {
		r := reading(
			rng.Float64()*100.0,  // at or below cutoff
			rng.Float64()*4.99,   // always calm
			-35.0+rng.Float64()*25.0,
			28.0+rng.Float64()*7.0,
		)
		got := Evaluate(r)
		if got.Action != model.ActionSleep || !strings.Contains(got.Reason, "wind") {
			t.Fatalf("calm wind must SLEEP with wind reason, got %s %q", got.Action, got.Reason)
		}
	}
}

func TestExactlyOneActionForAnyReading(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 5000; i++ {
		r := reading(
			rng.Float64()*200.0,
			rng.Float64()*15.0,
			-35.0+rng.Float64()*25.0,
			28.0+rng.Float64()*7.0,
		)
		got := Evaluate(r)
		switch got.Action {
		case model.ActionStop, model.ActionSleep, model.ActionPump:
		default:
			t.Fatalf("unexpected action %q", got.Action)
		}
		if got.Action != model.ActionPump && got.FlowLpm != 0 {
			t.Fatalf("%s decision must carry zero flow, got %.2f", got.Action, got.FlowLpm)
		}
	}
}

func TestPumpFlowAlwaysWithinEnvelope(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	for i := 0; i < 5000; i++ {
		// force the pump branch: low solar, viable wind, cold air
		r := reading(
			rng.Float64()*100.0,
			5.0+rng.Float64()*10.0,
			-35.0+rng.Float64()*15.0, // [-35, -20]
			28.0+rng.Float64()*7.0,
		)
		got := Evaluate(r)
		if got.Action != model.ActionPump {
			continue // air exactly above -20 edge is excluded by sampling, but be safe
		}
		if got.FlowLpm < MinFlowLpm || got.FlowLpm > MaxFlowLpm {
			t.Fatalf("flow %.2f outside [%.0f, %.0f] for %+v", got.FlowLpm, MinFlowLpm, MaxFlowLpm, r)
		}
		if round1(got.FlowLpm) != got.FlowLpm {
			t.Fatalf("flow %.4f not rounded to 1 decimal", got.FlowLpm)
		}
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	r := reading(50.0, 10.0, -30.0, 30.0)
	a := Evaluate(r)
	b := Evaluate(r)
	if a != b {
		t.Fatalf("same reading produced different decisions: %+v vs %+v", a, b)
	}
}
