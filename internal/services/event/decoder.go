package event

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/arcticworks/icepump/internal/model/messages"
)

type CommonEvent struct {
	EventType     string // pump.decision | pump.state_change | pump.result
	SourceService string // controller | actuator | ...
	StationID     string
	Severity      string // info|warning|error
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler turns MQTT messages into CommonEvents and hands them to sink
// (Influx).
type MQTTHandler struct{ sink func(CommonEvent) }

func NewMQTTHandler(sink func(CommonEvent)) *MQTTHandler { return &MQTTHandler{sink: sink} }

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	var (
		evt CommonEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, "event/pumpDecision/"):
		evt, err = decodeDecision(topic, payload)
	case strings.HasPrefix(topic, "event/pumpStateChange/"):
		evt, err = decodeStateChange(topic, payload)
	case strings.HasPrefix(topic, "event/pumpResult/"):
		evt, err = decodePumpResult(topic, payload)
	default:
		return nil // ignore other topics
	}
	if err != nil {
		return err
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func decodeDecision(topic string, payload []byte) (CommonEvent, error) {
	var d msg.PumpDecisionEvent
	if err := json.Unmarshal(payload, &d); err != nil {
		return CommonEvent{}, err
	}
	stationID := pickID(topic, d.StationID, "event/pumpDecision/")
	if stationID == "" {
		return CommonEvent{}, errors.New("decision: missing station")
	}
	sev := "info"
	if d.Action == msg.ActionStop {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "pump.decision",
		SourceService: "controller",
		StationID:     stationID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"action":     string(d.Action),
			"flow_lpm":   d.FlowLpm,
			"reason":     d.Reason,
			"air_temp_c": d.AirTempC,
			"solar_wm2":  d.SolarWm2,
		},
		Timestamp: d.Timestamp,
	}, nil
}

func decodeStateChange(topic string, payload []byte) (CommonEvent, error) {
	var s msg.StateChangeEvent
	if err := json.Unmarshal(payload, &s); err != nil {
		return CommonEvent{}, err
	}
	stationID := pickID(topic, s.StationID, "event/pumpStateChange/")
	if stationID == "" {
		return CommonEvent{}, errors.New("stateChange: missing station")
	}
	return CommonEvent{
		EventType:     "pump.state_change",
		SourceService: "actuator",
		StationID:     stationID,
		Severity:      "info",
		Fields: map[string]interface{}{
			"new_state": string(s.NewState),
			"flow_lpm":  s.FlowLpm,
			"duration":  s.Duration.Seconds(),
		},
		Timestamp: s.Timestamp,
	}, nil
}

func decodePumpResult(topic string, payload []byte) (CommonEvent, error) {
	var r msg.PumpResultEvent
	if err := json.Unmarshal(payload, &r); err != nil {
		return CommonEvent{}, err
	}
	stationID := pickID(topic, r.StationID, "event/pumpResult/")
	if stationID == "" {
		return CommonEvent{}, errors.New("result: missing station")
	}
	sev := "info"
	if strings.EqualFold(r.Status, "FAIL") {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "pump.result",
		SourceService: "actuator",
		StationID:     stationID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"action":   string(r.Action),
			"status":   r.Status,
			"flow_lpm": r.FlowLpm,
			"reason":   r.Reason,
		},
		Timestamp: r.Timestamp,
	}, nil
}

// pickID uses the payload id, or falls back to topic "prefix/{station}".
func pickID(topic, stationID, prefix string) string {
	if strings.TrimSpace(stationID) != "" {
		return stationID
	}
	suffix := strings.TrimPrefix(topic, prefix)
	parts := strings.Split(suffix, "/")
	if len(parts) >= 1 && parts[0] != "" {
		return parts[0]
	}
	return stationID
}
