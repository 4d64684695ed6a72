package event

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// EventToPoint normalizes a CommonEvent into a *write.Point for InfluxDB.
func EventToPoint(evt CommonEvent) *write.Point {
	// tags are strings only
	tags := map[string]string{
		"event_type":     evt.EventType,
		"source_service": evt.SourceService,
		"severity":       evt.Severity,
	}
	if evt.StationID != "" {
		tags["station_id"] = evt.StationID
	}

	fields := map[string]interface{}{}
	for k, v := range evt.Fields {
		fields[k] = v
	}

	// guarantee at least one field per point
	if _, ok := fields["count"]; !ok {
		fields["count"] = int64(1)
	}

	// single measurement "system_event"
	return influxdb2.NewPoint("system_event", tags, fields, evt.Timestamp)
}
