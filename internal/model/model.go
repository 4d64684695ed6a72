package model

import (
	"github.com/arcticworks/icepump/internal/model/entities"
	"github.com/arcticworks/icepump/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	StateReading      = messages.StateReading
	PumpAction        = messages.PumpAction
	PumpDecision      = messages.PumpDecision
	PumpDecisionEvent = messages.PumpDecisionEvent
	PumpResultEvent   = messages.PumpResultEvent
	StateChangeEvent  = messages.StateChangeEvent
	Station           = entities.Station
	PumpState         = entities.PumpState
)

const (
	StateOn  = entities.StateOn
	StateOff = entities.StateOff

	ActionStop  = messages.ActionStop
	ActionSleep = messages.ActionSleep
	ActionPump  = messages.ActionPump
)
