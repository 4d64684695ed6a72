package aggregator

import (
	"testing"

	"github.com/arcticworks/icepump/internal/model/messages"
)

func TestMeanAveragesEveryField(t *testing.T) {
	readings := []messages.StateReading{
		{AirTempC: -30, WindSpeedMs: 10, SalinityPSU: 30, SolarWm2: 40, IceThicknessCm: 100},
		{AirTempC: -20, WindSpeedMs: 6, SalinityPSU: 32, SolarWm2: 60, IceThicknessCm: 120},
	}

	out := mean("station1", readings)

	if out.StationID != "station1" {
		t.Fatalf("station id %q", out.StationID)
	}
	if out.AirTempC != -25 || out.WindSpeedMs != 8 || out.SalinityPSU != 31 ||
		out.SolarWm2 != 50 || out.IceThicknessCm != 110 {
		t.Fatalf("unexpected mean %+v", out)
	}
	if out.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
}
