package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcticworks/icepump/internal/services/gateway/app"
)

func main() {
	cfg := loadConfig()

	gw := app.NewGateway(app.Config{
		ActuatorBaseURL: cfg.ActuatorURL,
		EventsBaseURL:   cfg.EventURL,
		ActuatorPath:    "/stations/status",
		EventsPath:      "/events/pump/latest",
		HTTPTimeout:     time.Duration(cfg.TimeoutMs) * time.Millisecond,
		BreakerFailures: cfg.BreakerFailures,
		BreakerOpenFor:  time.Duration(cfg.BreakerOpenMs) * time.Millisecond,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/dashboard/data", gw.HandleDashboard)
	mux.Handle("/metrics", promhttp.Handler())

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("gateway: HTTP listening on :%s", cfg.Port)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("gateway: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)
}
