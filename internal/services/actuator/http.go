package actuator

import (
	"encoding/json"
	"net/http"
)

// NewStatusHandler serves GET /stations/status as map[stationID]pumpState,
// the payload the gateway aggregates into its dashboard view.
func NewStatusHandler(a *Actuator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a.States())
	})
}
