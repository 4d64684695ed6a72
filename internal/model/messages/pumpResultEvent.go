package messages

import "time"

// PumpResultEvent is published by the actuator service when a commanded pump
// action has been applied (or refused).
type PumpResultEvent struct {
	StationID string     `json:"station_id"`
	Action    PumpAction `json:"action"`
	FlowLpm   float64    `json:"flow_lpm"`
	Status    string     `json:"status"` // "OK" | "FAIL"
	Reason    string     `json:"reason"`
	StartedAt time.Time  `json:"started_at"`
	Timestamp time.Time  `json:"timestamp"`
}
