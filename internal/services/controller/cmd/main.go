package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/arcticworks/icepump/internal/services/controller"
	"github.com/arcticworks/icepump/pkg/mqttbus"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MQTT
	host := env("MQTT_HOST", "localhost")
	port := envInt("MQTT_PORT", 1883)
	user := env("MQTT_USER", "guest")
	pass := env("MQTT_PASSWORD", "guest")
	clientID := fmt.Sprintf("PumpController-%s", env("HOSTNAME", "local"))

	cfg := &mqttbus.BrokerConfig{Host: host, Port: port, User: user, Password: pass, ClientID: clientID}
	mqClient, err := mqttbus.NewBrokerConn(cfg, ctx)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}

	readingSub := env("READING_SUB_TOPIC", "station/reading/#")
	decisionTmpl := env("DECISION_TOPIC_TEMPLATE", "event/pumpDecision/{station}")
	commandTmpl := env("COMMAND_TOPIC_TEMPLATE", "cmd/pumpState/{station}")
	stationsPath := env("STATIONS_CONFIG_PATH", "/app/config/stations-config.json")

	consumer := mqttbus.NewConsumer(mqClient, readingSub, nil)
	publisher := mqttbus.NewPublisher(mqClient, decisionTmpl)

	ctrl, err := controller.NewController(consumer, publisher, stationsPath, decisionTmpl, commandTmpl)
	if err != nil {
		log.Fatalf("controller init: %v", err)
	}

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		<-sigc
		cancel()
	}()

	log.Printf("PumpController running. sub=%s decisions=%s commands=%s", readingSub, decisionTmpl, commandTmpl)
	ctrl.Start(ctx)
}
