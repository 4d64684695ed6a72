package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcticworks/icepump/internal/services/aggregator"
	"github.com/arcticworks/icepump/pkg/mqttbus"
)

func main() {
	cfg := &mqttbus.BrokerConfig{
		Host:     "localhost",
		Port:     1883,
		User:     "guest",
		Password: "guest",
		ClientID: "readingAggregator1",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		<-sigc
		cancel()
	}()

	client, err := mqttbus.NewBrokerConn(cfg, ctx)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}

	publisher := mqttbus.NewPublisher(client, "station/aggregated")
	consumer := mqttbus.NewConsumer(client, "station/reading/#", nil)

	svc := aggregator.NewReadingAggregatorService(consumer, publisher, 1*time.Minute)

	log.Println("Reading aggregator service is running...")
	svc.Start(ctx)
}
