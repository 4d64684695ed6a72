package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/arcticworks/icepump/internal/model/entities"
	"github.com/arcticworks/icepump/internal/model/messages"
)

// ====== Sampling bounds ======
// Each field is drawn independently from a uniform distribution over a fixed
// closed interval. Values are rounded to 2 decimal places.
const (
	AirTempMinC = -35.0
	AirTempMaxC = -10.0

	WindSpeedMinMs = 0.0
	WindSpeedMaxMs = 15.0

	SalinityMinPSU = 28.0
	SalinityMaxPSU = 35.0

	SolarMinWm2 = 0.0
	SolarMaxWm2 = 200.0

	IceThicknessMinCm = 50.0
	IceThicknessMaxCm = 150.0

	// growthPerMinCm: ice accreted per minute while the pump floods the
	// surface. Applied as a bias on top of the sampled thickness.
	growthPerMinCm = 0.05
)

// Generator produces synthetic environmental readings. The random source is
// injected so tests can pin a seed; a nil source falls back to a time-seeded
// one (non-reproducible, as on the real deployment).
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	last     time.Time
	growthCm float64 // accumulated pump-driven thickness bias
}

func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Next samples a fresh reading for the station. While the station's pump is
// on, sampled ice thickness is biased upwards by the accumulated growth since
// the last call, capped at the sampling ceiling.
func (g *Generator) Next(station *entities.Station) messages.StateReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	if !g.last.IsZero() && station != nil && station.State == entities.StateOn {
		dtMin := now.Sub(g.last).Minutes()
		if dtMin > 0 {
			g.growthCm += growthPerMinCm * dtMin
		}
	}
	g.last = now

	thickness := g.uniform(IceThicknessMinCm, IceThicknessMaxCm) + g.growthCm
	if thickness > IceThicknessMaxCm {
		thickness = IceThicknessMaxCm
	}

	id := ""
	if station != nil {
		id = station.ID
	}

	return messages.StateReading{
		StationID:      id,
		AirTempC:       round2(g.uniform(AirTempMinC, AirTempMaxC)),
		WindSpeedMs:    round2(g.uniform(WindSpeedMinMs, WindSpeedMaxMs)),
		SalinityPSU:    round2(g.uniform(SalinityMinPSU, SalinityMaxPSU)),
		SolarWm2:       round2(g.uniform(SolarMinWm2, SolarMaxWm2)),
		IceThicknessCm: round2(thickness),
		Timestamp:      now,
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
