package aggregator

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/arcticworks/icepump/internal/model/messages"
	"github.com/arcticworks/icepump/pkg/mqttbus"
)

// ReadingAggregatorService smooths the noisy synthetic readings: it buffers
// raw readings per station and periodically publishes their field-wise mean,
// so the controller can run on a steadier signal.
type ReadingAggregatorService struct {
	consumer            mqttbus.IConsumer[messages.StateReading]
	publisher           mqttbus.IPublisher
	buffer              map[string][]messages.StateReading // key is StationID
	mutex               sync.Mutex
	aggregationInterval time.Duration
}

func NewReadingAggregatorService(consumer mqttbus.IConsumer[messages.StateReading], publisher mqttbus.IPublisher, aggregationInterval time.Duration) *ReadingAggregatorService {
	return &ReadingAggregatorService{
		consumer:            consumer,
		publisher:           publisher,
		aggregationInterval: aggregationInterval,
		buffer:              make(map[string][]messages.StateReading),
	}
}

func (d *ReadingAggregatorService) messageHandler(_ string, message mqtt.Message) error {
	var reading messages.StateReading
	if err := json.Unmarshal(message.Payload(), &reading); err != nil {
		log.Printf("Error unmarshalling reading: %v", err)
		return err
	}

	d.mutex.Lock()
	d.buffer[reading.StationID] = append(d.buffer[reading.StationID], reading)
	d.mutex.Unlock()

	return nil
}

func (d *ReadingAggregatorService) Start(ctx context.Context) {
	d.consumer.SetHandler(d.messageHandler)

	go d.consumer.ConsumeMessage(ctx)

	ticker := time.NewTicker(d.aggregationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.publisher.Close()
			return
		case <-ticker.C:
			d.aggregateAndPublish()
		}
	}
}

func (d *ReadingAggregatorService) aggregateAndPublish() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for stationID, readings := range d.buffer {
		if len(readings) == 0 {
			continue
		}

		out := mean(stationID, readings)

		b, err := json.Marshal(out)
		if err != nil {
			log.Printf("marshal err %v", err)
			continue
		}
		if err := d.publisher.PublishMessage(string(b)); err != nil {
			log.Printf("publish err %v", err)
		} else {
			log.Printf("aggregated %d readings for %s: temp=%.2fC solar=%.2fW/m2",
				len(readings), stationID, out.AirTempC, out.SolarWm2)
		}

		// reset buffer
		d.buffer[stationID] = readings[:0]
	}
}

func mean(stationID string, readings []messages.StateReading) messages.StateReading {
	n := float64(len(readings))
	var out messages.StateReading
	for _, r := range readings {
		out.AirTempC += r.AirTempC
		out.WindSpeedMs += r.WindSpeedMs
		out.SalinityPSU += r.SalinityPSU
		out.SolarWm2 += r.SolarWm2
		out.IceThicknessCm += r.IceThicknessCm
	}
	out.AirTempC /= n
	out.WindSpeedMs /= n
	out.SalinityPSU /= n
	out.SolarWm2 /= n
	out.IceThicknessCm /= n
	out.StationID = stationID
	out.Timestamp = time.Now().UTC()
	return out
}
