package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	TimeoutMs int

	ActuatorURL string
	EventURL    string

	BreakerFailures int
	BreakerOpenMs   int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:      getenv("PORT", "5009"),
		TimeoutMs: getenvInt("TIMEOUT_MS", 3000),

		ActuatorURL: getenv("ACTUATOR_URL", "http://actuator-service:8081"),
		EventURL:    getenv("EVENT_URL", "http://event-service:8080"),

		BreakerFailures: getenvInt("CB_FAILURES", 3),
		BreakerOpenMs:   getenvInt("CB_OPEN_MS", 10000),
	}
}
