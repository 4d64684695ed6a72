// Package simulation drives the standalone control loop: generate a reading,
// evaluate it, execute the decision, sleep, repeat. Everything stays
// in-process; the distributed services carry the same pipeline over MQTT.
package simulation

import (
	"context"
	"log"
	"time"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/internal/model/entities"
	"github.com/arcticworks/icepump/internal/model/messages"
)

// Generator produces one synthetic reading per cycle.
type Generator interface {
	Next(station *entities.Station) messages.StateReading
}

// Runner iterates the fixed generate -> evaluate -> execute pipeline.
// Each cycle is self-contained; cancellation between cycles terminates the
// loop cleanly with a final message.
type Runner struct {
	Station   *entities.Station
	Generator Generator
	Evaluate  func(model.StateReading) model.PumpDecision
	Executor  Executor
	Cycles    int
	Interval  time.Duration
	Logger    *log.Logger
}

// Run executes up to r.Cycles cycles and returns the result events of the
// cycles that completed.
func (r *Runner) Run(ctx context.Context) []model.PumpResultEvent {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	results := make([]model.PumpResultEvent, 0, r.Cycles)
	for i := 1; i <= r.Cycles; i++ {
		reading := r.Generator.Next(r.Station)
		logger.Printf("cycle %d/%d: temp=%.2fC solar=%.2fW/m2", i, r.Cycles, reading.AirTempC, reading.SolarWm2)

		decision := r.Evaluate(reading)
		results = append(results, r.Executor.Execute(decision))
		logger.Println("----------------------------------------")

		if i == r.Cycles {
			break
		}
		select {
		case <-ctx.Done():
			logger.Printf("simulation interrupted after %d cycles; shutting down cleanly", len(results))
			return results
		case <-time.After(r.Interval):
		}
	}

	logger.Printf("simulation complete: %d cycles", len(results))
	return results
}
