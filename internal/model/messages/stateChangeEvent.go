package messages

import (
	"time"

	"github.com/arcticworks/icepump/internal/model/entities"
)

// StateChangeEvent commands (or records) a pump state transition at a station.
// Duration > 0 means the state reverts automatically afterwards.
type StateChangeEvent struct {
	StationID string             `json:"station_id"`
	NewState  entities.PumpState `json:"new_state"`
	FlowLpm   float64            `json:"flow_lpm"`
	Duration  time.Duration      `json:"duration"`
	Timestamp time.Time          `json:"timestamp"`
}
