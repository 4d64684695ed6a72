package controller

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/pkg/dedup"
	"github.com/arcticworks/icepump/pkg/mqttbus"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ===================== Config / defaults =====================

const (
	defaultPumpRunMinutes = 10
	defaultDecisionTopic  = "event/pumpDecision/{station}"
	defaultCommandTopic   = "cmd/pumpState/{station}"
)

// ===================== Controller =====================

// Controller consumes station readings, evaluates the gate table, publishes
// a decision event and, when the decision is PUMP or STOP, a pump state
// command for the actuator.
type Controller struct {
	consumer  mqttbus.IConsumer[model.StateReading]
	publisher mqttbus.IPublisher
	stations  map[string]model.Station

	pumpRunFor time.Duration

	decisionTopicTmpl string
	commandTopicTmpl  string

	// guard against re-commanding a pump that is already running
	pumpingMu    sync.Mutex
	pumpingUntil map[string]time.Time // key = station id

	mu sync.RWMutex // stations access

	deduper *dedup.Deduper
}

func NewController(
	c mqttbus.IConsumer[model.StateReading],
	p mqttbus.IPublisher,
	stationsPath string,
	decisionTopicTmpl string,
	commandTopicTmpl string,
) (*Controller, error) {
	if c == nil {
		return nil, errors.New("consumer is nil")
	}
	if p == nil {
		return nil, errors.New("publisher is nil")
	}

	stations, err := loadStations(stationsPath)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}

	runMin := getenvInt("PUMP_RUN_MINUTES", defaultPumpRunMinutes)
	if runMin <= 0 {
		runMin = defaultPumpRunMinutes
	}

	ctrl := &Controller{
		consumer:          c,
		publisher:         p,
		stations:          stations,
		pumpRunFor:        time.Duration(runMin) * time.Minute,
		decisionTopicTmpl: firstNonEmpty(decisionTopicTmpl, defaultDecisionTopic),
		commandTopicTmpl:  firstNonEmpty(commandTopicTmpl, defaultCommandTopic),
		pumpingUntil:      make(map[string]time.Time),
		deduper:           dedup.New(10*time.Minute, 20000),
	}
	c.SetHandler(ctrl.handleReading)
	return ctrl, nil
}

func (c *Controller) Start(ctx context.Context) {
	go c.consumer.ConsumeMessage(ctx)
	<-ctx.Done()
}

// ===================== reading handler =====================

func (c *Controller) handleReading(_ string, msg mqtt.Message) error {
	// dedup before unmarshal: identical QoS1 redeliveries are dropped
	h := sha256.Sum256(msg.Payload())
	if c.deduper != nil && !c.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var r model.StateReading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		log.Printf("controller: bad payload: %v", err)
		return nil
	}

	station, ok := c.lookupStation(r.StationID)
	if !ok {
		log.Printf("controller: unknown station %s", r.StationID)
		return nil
	}

	log.Printf("reading: %s temp=%.2fC wind=%.2fm/s salinity=%.2fPSU solar=%.2fW/m2 ice=%.2fcm",
		r.StationID, r.AirTempC, r.WindSpeedMs, r.SalinityPSU, r.SolarWm2, r.IceThicknessCm)

	decision := Evaluate(r)
	log.Printf("decision: %s action=%s flow=%.1flpm reason=%q",
		r.StationID, decision.Action, decision.FlowLpm, decision.Reason)

	switch decision.Action {
	case model.ActionPump:
		c.commandPumpOn(station, decision)
	case model.ActionStop:
		c.commandPumpOff(station, decision)
	}

	return c.publishDecision(r, decision)
}

func (c *Controller) commandPumpOn(station model.Station, d model.PumpDecision) {
	now := time.Now()

	// the lock spans check, publish and record, so concurrent readings for
	// the same station cannot both command pump-on
	c.pumpingMu.Lock()
	defer c.pumpingMu.Unlock()

	if busyUntil, ok := c.pumpingUntil[station.ID]; ok && now.Before(busyUntil) {
		log.Printf("controller: skip start %s (already ON until %s)", station.ID, busyUntil.Format(time.RFC3339))
		return
	}

	evt := model.StateChangeEvent{
		StationID: station.ID,
		NewState:  model.StateOn,
		FlowLpm:   d.FlowLpm,
		Duration:  c.pumpRunFor,
		Timestamp: now.UTC(),
	}
	if err := c.publishCommand(station.ID, evt); err != nil {
		log.Printf("controller: pump-on command error: %v", err)
		return
	}

	until := now.Add(c.pumpRunFor)
	c.pumpingUntil[station.ID] = until
	log.Printf("controller: pump %s ON at %.1f lpm for %s (busy until %s)",
		station.ID, d.FlowLpm, c.pumpRunFor, until.Format(time.RFC3339))
}

func (c *Controller) commandPumpOff(station model.Station, d model.PumpDecision) {
	evt := model.StateChangeEvent{
		StationID: station.ID,
		NewState:  model.StateOff,
		Timestamp: time.Now().UTC(),
	}
	if err := c.publishCommand(station.ID, evt); err != nil {
		log.Printf("controller: pump-off command error: %v", err)
		return
	}

	c.pumpingMu.Lock()
	delete(c.pumpingUntil, station.ID)
	c.pumpingMu.Unlock()
	log.Printf("WARN: controller: emergency stop commanded for %s: %s", station.ID, d.Reason)
}

// ===================== Publish & utilities =====================

func (c *Controller) publishCommand(stationID string, evt model.StateChangeEvent) error {
	b, _ := json.Marshal(evt)
	topic := strings.NewReplacer("{station}", stationID).Replace(c.commandTopicTmpl)
	return c.publisher.PublishToQos(topic, 1, false, string(b))
}

func (c *Controller) publishDecision(r model.StateReading, d model.PumpDecision) error {
	evt := model.PumpDecisionEvent{
		StationID: r.StationID,
		Action:    d.Action,
		FlowLpm:   d.FlowLpm,
		Reason:    d.Reason,
		AirTempC:  r.AirTempC,
		SolarWm2:  r.SolarWm2,
		Timestamp: time.Now().UTC(),
	}
	b, _ := json.Marshal(evt)
	topic := strings.NewReplacer("{station}", r.StationID).Replace(c.decisionTopicTmpl)

	// decisions ride QoS 1: a missed STOP matters
	if err := c.publisher.PublishToQos(topic, 1, false, string(b)); err != nil {
		log.Printf("controller: publish decision error: %v", err)
		return err
	}
	return nil
}

func (c *Controller) lookupStation(id string) (model.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.stations[id]
	return s, ok
}

// loadStations reads the station registry from a JSON file, accepting both
// "max_flow_lpm" and the legacy "max_flow" key.
func loadStations(path string) (map[string]model.Station, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}

	out := make(map[string]model.Station, len(list))
	for _, rec := range list {
		var s model.Station
		if v, ok := rec["id"].(string); ok {
			s.ID = v
		}
		if s.ID == "" {
			return nil, errors.New("station without id")
		}

		s.Latitude = toF64(rec["latitude"])
		s.Longitude = toF64(rec["longitude"])

		maxFlow := toF64(rec["max_flow_lpm"])
		if maxFlow == 0 {
			maxFlow = toF64(rec["max_flow"])
		}
		s.MaxFlowLpm = maxFlow
		s.MinFlowLpm = toF64(rec["min_flow_lpm"])
		s.State = model.StateOff

		out[s.ID] = s
	}
	return out, nil
}

// toF64 converts ints/floats/strings to float64.
func toF64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", "."), 64); err == nil {
			return f
		}
	}
	return 0
}

// --------------------- small helpers ---------------------

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
