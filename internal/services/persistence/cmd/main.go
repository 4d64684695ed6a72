package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	persistencepkg "github.com/arcticworks/icepump/internal/services/persistence"
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
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MQTT ---
	mqCfg := &mqttbus.BrokerConfig{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", "mqtt_user"),
		Password: env("MQTT_PASS", "mqtt_pwd"),
		ClientID: env("MQTT_CLIENT_ID", "persistence-service"),
	}
	mqClient, err := mqttbus.NewBrokerConn(mqCfg, ctx)
	if err != nil {
		log.Fatalf("mqtt connect failed: %v", err)
	}
	topic := env("READING_SUB_TOPIC", "station/reading/#")
	consumer := mqttbus.NewConsumer(mqClient, topic, nil)

	// --- InfluxDB ---
	influxCfg := persistencepkg.InfluxConfig{
		InfluxURL:    env("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  env("INFLUX_TOKEN", ""),
		InfluxOrg:    env("INFLUX_ORG", "arcticworks"),
		InfluxBucket: env("INFLUX_BUCKET", "station-readings"),
		Measurement:  env("MEASUREMENT", "station_reading"),
	}
	influxClient := influxdb2.NewClient(influxCfg.InfluxURL, influxCfg.InfluxToken)
	defer influxClient.Close()

	svc, err := persistencepkg.NewService(consumer, influxClient, influxCfg)
	if err != nil {
		log.Fatalf("persistence init failed: %v", err)
	}

	// /healthz and /data/latest are registered inside NewHTTPMux
	mux := persistencepkg.NewHTTPMux(svc)
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ready": true})
	})

	httpPort := env("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("persistence HTTP listening on :%s", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	go svc.Start(ctx)

	<-ctx.Done()
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Println("persistence: shutdown complete")
}
