package app

import (
	"encoding/json"
	"testing"
)

func TestPumpEventTolerantUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want PumpEvent
	}{
		{
			name: "canonical payload",
			in:   `{"station_id":"station1","flow_lpm":21.0,"time":"2026-02-01T12:00:00Z"}`,
			want: PumpEvent{StationID: "station1", FlowLpm: 21.0, Time: "2026-02-01T12:00:00Z"},
		},
		{
			name: "flow as string",
			in:   `{"station_id":"station1","flow_lpm":"15.5","time":"2026-02-01T12:00:00Z"}`,
			want: PumpEvent{StationID: "station1", FlowLpm: 15.5, Time: "2026-02-01T12:00:00Z"},
		},
		{
			name: "legacy flow key and timestamp key",
			in:   `{"station_id":"station1","flow":30,"timestamp":"2026-02-01T12:00:00Z"}`,
			want: PumpEvent{StationID: "station1", FlowLpm: 30, Time: "2026-02-01T12:00:00Z"},
		},
		{
			name: "missing fields stay zero",
			in:   `{}`,
			want: PumpEvent{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got PumpEvent
			if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
