package simulation

import (
	"log"
	"time"

	"github.com/arcticworks/icepump/internal/model"
)

// Executor applies a pump decision and reports what the (simulated) actuator
// did. Returning the event lets the runner and tests assert on outcomes
// instead of scraping log output.
type Executor interface {
	Execute(d model.PumpDecision) model.PumpResultEvent
}

// LogExecutor is the standalone-mode actuator: no hardware, just a log line
// per action plus the result event.
type LogExecutor struct {
	StationID string
	Logger    *log.Logger
}

func NewLogExecutor(stationID string, logger *log.Logger) *LogExecutor {
	if logger == nil {
		logger = log.Default()
	}
	return &LogExecutor{StationID: stationID, Logger: logger}
}

func (e *LogExecutor) Execute(d model.PumpDecision) model.PumpResultEvent {
	now := time.Now().UTC()

	switch d.Action {
	case model.ActionPump:
		e.Logger.Printf("actuator: pump engaged at %.1f lpm (%s)", d.FlowLpm, d.Reason)
	case model.ActionStop:
		e.Logger.Printf("WARN: actuator: emergency shutdown (%s)", d.Reason)
	default:
		e.Logger.Printf("actuator: idle (%s)", d.Reason)
	}

	return model.PumpResultEvent{
		StationID: e.StationID,
		Action:    d.Action,
		FlowLpm:   d.FlowLpm,
		Status:    "OK",
		Reason:    d.Reason,
		StartedAt: now,
		Timestamp: now,
	}
}
