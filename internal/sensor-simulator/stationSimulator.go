package sensor_simulator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/pkg/dedup"
	"github.com/arcticworks/icepump/pkg/mqttbus"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// StationSimulator publishes synthetic readings at a fixed interval and
// tracks pump state changes announced by the actuator service, so that a
// running pump is reflected in subsequent readings.
type StationSimulator struct {
	mu        sync.Mutex
	station   *model.Station
	timer     *time.Timer // single revert timer
	generator *Generator
	publisher mqttbus.IPublisher
	consumer  mqttbus.IConsumer[mqtt.Message]
	deduper   *dedup.Deduper
}

func NewStationSimulator(consumer mqttbus.IConsumer[mqtt.Message], publisher mqttbus.IPublisher,
	gen *Generator, station *model.Station) *StationSimulator {
	return &StationSimulator{
		station:   station,
		generator: gen,
		publisher: publisher,
		consumer:  consumer,
		deduper:   dedup.New(2*time.Minute, 10000),
	}
}

// Start begins consuming state changes and publishing readings until ctx is
// cancelled.
func (s *StationSimulator) Start(ctx context.Context, interval time.Duration) {
	s.consumer.SetHandler(s.handleMessage)
	go s.consumer.ConsumeMessage(ctx)

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-time.After(interval):
			s.mu.Lock()
			station := *s.station
			s.mu.Unlock()

			reading := s.generator.Next(&station)
			log.Printf("station: pub reading station=%s temp=%.2fC solar=%.2fW/m2 ice=%.2fcm",
				reading.StationID, reading.AirTempC, reading.SolarWm2, reading.IceThicknessCm)
			payload, _ := json.Marshal(reading)
			if err := s.publisher.PublishMessage(string(payload)); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
	}
}

func (s *StationSimulator) handleMessage(_ string, msg mqtt.Message) error {
	// Dedup by payload: a QoS1 redelivery carries the same bytes.
	h := sha256.Sum256(msg.Payload())
	if s.deduper != nil && !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var evt model.StateChangeEvent
	if err := json.Unmarshal(msg.Payload(), &evt); err != nil {
		return fmt.Errorf("invalid StateChangeEvent: %w", err)
	}
	if evt.StationID != s.station.ID {
		// event for another station
		return nil
	}
	s.applyTimedState(evt)
	return nil
}

func (s *StationSimulator) applyTimedState(evt model.StateChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	prev := s.station.State
	s.station.State = evt.NewState
	log.Printf("station %s -> %s for %s", s.station.ID, evt.NewState, evt.Duration)

	if evt.Duration > 0 {
		s.timer = time.AfterFunc(evt.Duration, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.station.State = prev
			log.Printf("station %s reverted to %s", s.station.ID, prev)
			s.timer = nil
		})
	}
}
