package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/internal/services/actuator"
	"github.com/arcticworks/icepump/pkg/mqttbus"
)

func mustEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	if def != "" {
		return def
	}
	log.Fatalf("missing required env %s", k)
	return ""
}

func main() {
	host := mustEnv("MQTT_HOST", "localhost")
	portStr := mustEnv("MQTT_PORT", "1883")
	user := mustEnv("MQTT_USER", "guest")
	pass := mustEnv("MQTT_PASSWORD", "guest")
	clientID := mustEnv("MQTT_CLIENTID", "actuator-service")
	httpPort := mustEnv("HTTP_PORT", "8081")
	stationsPath := mustEnv("STATIONS_CONFIG_PATH", "/app/config/stations-config.json")
	commandSub := mustEnv("COMMAND_SUB_TOPIC", "cmd/pumpState/#")
	stateTmpl := mustEnv("STATECHANGE_TOPIC_TEMPLATE", "event/pumpStateChange/{station}")
	resultTmpl := mustEnv("RESULT_TOPIC_TEMPLATE", "event/pumpResult/{station}")

	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		log.Fatalf("invalid MQTT_PORT: %v", err)
	}

	raw, err := os.ReadFile(stationsPath)
	if err != nil {
		log.Fatalf("read stations config: %v", err)
	}
	var list []model.Station
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Fatalf("unmarshal stations config: %v", err)
	}
	stations := make(map[string]model.Station, len(list))
	for _, s := range list {
		s.State = model.StateOff
		stations[s.ID] = s
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &mqttbus.BrokerConfig{Host: host, Port: port, User: user, Password: pass, ClientID: clientID}
	mqClient, err := mqttbus.NewBrokerConn(cfg, ctx)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}
	defer mqttbus.CloseBrokerConn(mqClient)

	consumer := mqttbus.NewConsumer(mqClient, commandSub, nil)
	publisher := mqttbus.NewPublisher(mqClient, stateTmpl)

	act := actuator.NewActuator(consumer, publisher, stations, stateTmpl, resultTmpl)

	mux := http.NewServeMux()
	mux.Handle("/stations/status", actuator.NewStatusHandler(act))
	hs := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("actuator: HTTP listening on :%s", httpPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		<-sigc
		cancel()
	}()

	log.Printf("actuator running. sub=%s stations=%d", commandSub, len(stations))
	act.Start(ctx)

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)
}
