package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcticworks/icepump/internal/model/entities"
	sensorSimulator "github.com/arcticworks/icepump/internal/sensor-simulator"
	"github.com/arcticworks/icepump/pkg/mqttbus"
)

func main() {
	stationID := flag.String("station-id", "station1", "unique station identifier")
	clientID := flag.String("client-id", "stationPublisher1", "MQTT client ID")
	interval := flag.Duration("interval", 10*time.Second, "publish interval")
	lat := flag.Float64("lat", 78.92436, "latitude")
	lon := flag.Float64("lon", 11.92306, "longitude")
	seed := flag.Int64("seed", 0, "random seed (0 = time-seeded)")
	host := flag.String("broker-host", "localhost", "MQTT broker host")
	port := flag.Int("broker-port", 1883, "MQTT broker port")
	flag.Parse()

	cfg := &mqttbus.BrokerConfig{
		Host:     *host,
		Port:     *port,
		User:     "guest",
		Password: "guest",
		ClientID: *clientID,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	client, err := mqttbus.NewBrokerConn(cfg, ctx)
	if err != nil {
		log.Fatal(err)
	}

	publisher := mqttbus.NewPublisher(client, "station/reading/"+*stationID)
	consumer := mqttbus.NewConsumer(client, "event/pumpStateChange/#", nil)

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}
	generator := sensorSimulator.NewGenerator(rng)

	station := entities.Station{
		ID:        *stationID,
		Latitude:  *lat,
		Longitude: *lon,
		State:     entities.StateOff,
	}
	sim := sensorSimulator.NewStationSimulator(consumer, publisher, generator, &station)
	sim.Start(ctx, *interval)
}
