package controller

import (
	"fmt"
	"math"

	"github.com/arcticworks/icepump/internal/model"
)

// ===================== Thresholds / weights =====================

const (
	// SolarStopWm2: above this the spring bloom is underway and pumping
	// must halt regardless of every other condition.
	SolarStopWm2 = 100.0

	// WindMinMs: below this the turbine cannot drive the pump.
	WindMinMs = 5.0

	// TempMaxC: above this flooded seawater forms slush instead of ice.
	TempMaxC = -20.0

	// Flow formula weights and hardware limits [liters/min].
	tempFlowWeight     = 2.5
	salinityFlowWeight = 1.8
	MinFlowLpm         = 10.0
	MaxFlowLpm         = 100.0
)

// gate is one threshold check. Gates are evaluated in order; the first whose
// predicate holds determines the outcome.
type gate struct {
	name    string
	match   func(model.StateReading) bool
	outcome func(model.StateReading) model.PumpDecision
}

// Gate order is load-bearing: the ecological cutoff dominates wind, wind
// dominates temperature, and the flow computation only runs once all three
// exclusions have passed.
var gates = []gate{
	{
		name:  "ecological-cutoff",
		match: func(r model.StateReading) bool { return r.SolarWm2 > SolarStopWm2 },
		outcome: func(r model.StateReading) model.PumpDecision {
			return model.PumpDecision{
				Action: model.ActionStop,
				Reason: fmt.Sprintf("solar radiation %.1f W/m2 signals spring bloom; halting to protect under-ice ecology", r.SolarWm2),
			}
		},
	},
	{
		name:  "wind-viability",
		match: func(r model.StateReading) bool { return r.WindSpeedMs < WindMinMs },
		outcome: func(r model.StateReading) model.PumpDecision {
			return model.PumpDecision{
				Action: model.ActionSleep,
				Reason: fmt.Sprintf("wind %.1f m/s below %.1f m/s cut-in; insufficient wind to drive pump", r.WindSpeedMs, WindMinMs),
			}
		},
	},
	{
		name:  "temperature-viability",
		match: func(r model.StateReading) bool { return r.AirTempC > TempMaxC },
		outcome: func(r model.StateReading) model.PumpDecision {
			return model.PumpDecision{
				Action: model.ActionSleep,
				Reason: fmt.Sprintf("air %.1f C too warm; flooding would form slush instead of ice", r.AirTempC),
			}
		},
	},
	{
		name:  "flow-optimization",
		match: func(model.StateReading) bool { return true },
		outcome: func(r model.StateReading) model.PumpDecision {
			return model.PumpDecision{
				Action:  model.ActionPump,
				FlowLpm: optimalFlow(r.AirTempC, r.SalinityPSU),
				Reason:  fmt.Sprintf("optimal conditions: air %.1f C, wind %.1f m/s", r.AirTempC, r.WindSpeedMs),
			}
		},
	},
}

// Evaluate maps a reading to a pump decision. Pure and total: the last gate
// matches everything, so exactly one outcome is produced.
func Evaluate(r model.StateReading) model.PumpDecision {
	for _, g := range gates {
		if g.match(r) {
			return g.outcome(r)
		}
	}
	// unreachable: flow-optimization matches unconditionally
	return model.PumpDecision{Action: model.ActionSleep, Reason: "no gate matched"}
}

// optimalFlow computes the pump rate from cold reserve and brine load, then
// clamps to the hardware envelope. The formula can go negative when the
// salinity term dominates; the clamp floors that to the minimum viable rate.
func optimalFlow(airTempC, salinityPSU float64) float64 {
	flow := math.Abs(airTempC)*tempFlowWeight - salinityPSU*salinityFlowWeight
	if flow < MinFlowLpm {
		flow = MinFlowLpm
	}
	if flow > MaxFlowLpm {
		flow = MaxFlowLpm
	}
	return round1(flow)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
