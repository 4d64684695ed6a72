package actuator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/pkg/dedup"
	"github.com/arcticworks/icepump/pkg/mqttbus"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Actuator simulates the pump hardware: it consumes pump state commands,
// flips in-memory station state, schedules the automatic off transition and
// publishes the applied state change plus a result event.
type Actuator struct {
	consumer  mqttbus.IConsumer[model.StateChangeEvent]
	publisher mqttbus.IPublisher
	stations  map[string]*model.Station

	stateTopicTmpl  string
	resultTopicTmpl string

	mu     sync.Mutex
	timers map[string]*time.Timer // one revert timer per station

	deduper *dedup.Deduper
}

func NewActuator(consumer mqttbus.IConsumer[model.StateChangeEvent], publisher mqttbus.IPublisher,
	stations map[string]model.Station, stateTopicTmpl, resultTopicTmpl string) *Actuator {
	owned := make(map[string]*model.Station, len(stations))
	for id := range stations {
		s := stations[id]
		owned[id] = &s
	}
	return &Actuator{
		consumer:        consumer,
		publisher:       publisher,
		stations:        owned,
		stateTopicTmpl:  stateTopicTmpl,
		resultTopicTmpl: resultTopicTmpl,
		timers:          make(map[string]*time.Timer),
		deduper:         dedup.New(10*time.Minute, 20000),
	}
}

func (a *Actuator) Start(ctx context.Context) {
	a.consumer.SetHandler(a.handleMessage)
	defer a.publisher.Close()

	// blocks until ctx is cancelled
	a.consumer.ConsumeMessage(ctx)
}

func (a *Actuator) handleMessage(_ string, message mqtt.Message) error {
	h := sha256.Sum256(message.Payload())
	if a.deduper != nil && !a.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var evt model.StateChangeEvent
	if err := json.Unmarshal(message.Payload(), &evt); err != nil {
		log.Printf("actuator: bad command payload: %v", err)
		return nil
	}
	return a.apply(evt)
}

// apply executes a pump state command against the in-memory station.
func (a *Actuator) apply(evt model.StateChangeEvent) error {
	a.mu.Lock()
	station, ok := a.stations[evt.StationID]
	if !ok {
		a.mu.Unlock()
		log.Printf("actuator: unknown station %s; skipping", evt.StationID)
		return nil
	}

	if t := a.timers[evt.StationID]; t != nil {
		t.Stop()
		delete(a.timers, evt.StationID)
	}

	startedAt := time.Now().UTC()
	station.State = evt.NewState

	action := model.ActionStop
	reason := "emergency shutdown applied"
	if evt.NewState == model.StateOn {
		action = model.ActionPump
		reason = fmt.Sprintf("pump running at %.1f lpm", evt.FlowLpm)
		if evt.Duration > 0 {
			stationID := evt.StationID
			a.timers[stationID] = time.AfterFunc(evt.Duration, func() {
				a.autoOff(stationID, evt.FlowLpm, startedAt)
			})
		}
	}
	a.mu.Unlock()

	log.Printf("actuator: station %s -> %s (flow=%.1f lpm, duration=%s)",
		evt.StationID, evt.NewState, evt.FlowLpm, evt.Duration)

	applied := model.StateChangeEvent{
		StationID: evt.StationID,
		NewState:  evt.NewState,
		FlowLpm:   evt.FlowLpm,
		Duration:  evt.Duration,
		Timestamp: startedAt,
	}
	if err := a.publishStateChange(applied); err != nil {
		log.Printf("actuator: publish state change error: %v", err)
	}

	result := model.PumpResultEvent{
		StationID: evt.StationID,
		Action:    action,
		FlowLpm:   evt.FlowLpm,
		Status:    "OK",
		Reason:    reason,
		StartedAt: startedAt,
		Timestamp: time.Now().UTC(),
	}
	if err := a.publishResult(result); err != nil {
		log.Printf("actuator: publish result error: %v", err)
		return err
	}
	return nil
}

// autoOff reverts the station to off when a timed run completes.
func (a *Actuator) autoOff(stationID string, flowLpm float64, startedAt time.Time) {
	a.mu.Lock()
	station, ok := a.stations[stationID]
	if !ok {
		a.mu.Unlock()
		return
	}
	station.State = model.StateOff
	delete(a.timers, stationID)
	a.mu.Unlock()

	now := time.Now().UTC()
	log.Printf("actuator: station %s run complete, pump off", stationID)

	_ = a.publishStateChange(model.StateChangeEvent{
		StationID: stationID,
		NewState:  model.StateOff,
		Timestamp: now,
	})
	_ = a.publishResult(model.PumpResultEvent{
		StationID: stationID,
		Action:    model.ActionPump,
		FlowLpm:   flowLpm,
		Status:    "OK",
		Reason:    "done",
		StartedAt: startedAt,
		Timestamp: now,
	})
}

// State reports the current pump state of a station.
func (a *Actuator) State(stationID string) (model.PumpState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stations[stationID]
	if !ok {
		return "", false
	}
	return s.State, true
}

// States snapshots all station states, for the HTTP status endpoint.
func (a *Actuator) States() map[string]model.PumpState {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]model.PumpState, len(a.stations))
	for id, s := range a.stations {
		out[id] = s.State
	}
	return out
}

func (a *Actuator) publishStateChange(evt model.StateChangeEvent) error {
	b, _ := json.Marshal(evt)
	topic := strings.NewReplacer("{station}", evt.StationID).Replace(a.stateTopicTmpl)
	return a.publisher.PublishToQos(topic, 1, false, string(b))
}

func (a *Actuator) publishResult(evt model.PumpResultEvent) error {
	b, _ := json.Marshal(evt)
	topic := strings.NewReplacer("{station}", evt.StationID).Replace(a.resultTopicTmpl)
	return a.publisher.PublishToQos(topic, 1, false, string(b))
}
