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
	"github.com/arcticworks/icepump/internal/services/controller"
	"github.com/arcticworks/icepump/internal/simulation"
)

func main() {
	cycles := flag.Int("cycles", 10, "number of control cycles")
	interval := flag.Duration("interval", 2*time.Second, "delay between cycles (2s simulates a 10-minute field interval)")
	stationID := flag.String("station-id", "station1", "station identifier")
	seed := flag.Int64("seed", 0, "random seed (0 = time-seeded)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	station := &entities.Station{ID: *stationID, State: entities.StateOff}
	runner := &simulation.Runner{
		Station:   station,
		Generator: sensorSimulator.NewGenerator(rng),
		Evaluate:  controller.Evaluate,
		Executor:  simulation.NewLogExecutor(*stationID, nil),
		Cycles:    *cycles,
		Interval:  *interval,
	}

	log.Printf("simulate: station=%s cycles=%d interval=%s", *stationID, *cycles, *interval)
	runner.Run(ctx)
}
