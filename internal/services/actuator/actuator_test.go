package actuator

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arcticworks/icepump/internal/model"
)

type capturedPublish struct {
	topic   string
	qos     byte
	payload string
}

// fakePublisher is safe for the auto-off timer goroutine.
type fakePublisher struct {
	mu        sync.Mutex
	published []capturedPublish
}

func (f *fakePublisher) PublishMessage(message interface{}) error { return nil }
func (f *fakePublisher) PublishToQos(topic string, qos byte, retained bool, message string) error {
	f.mu.Lock()
	f.published = append(f.published, capturedPublish{topic: topic, qos: qos, payload: message})
	f.mu.Unlock()
	return nil
}
func (f *fakePublisher) Close() {}

func (f *fakePublisher) snapshot() []capturedPublish {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedPublish(nil), f.published...)
}

func (f *fakePublisher) reset() {
	f.mu.Lock()
	f.published = nil
	f.mu.Unlock()
}

func newTestActuator(pub *fakePublisher) *Actuator {
	stations := map[string]model.Station{
		"station1": {ID: "station1", State: model.StateOff},
	}
	return NewActuator(nil, pub, stations,
		"event/pumpStateChange/{station}", "event/pumpResult/{station}")
}

func TestApplyPumpOnFlipsStateAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	a := newTestActuator(pub)

	err := a.apply(model.StateChangeEvent{
		StationID: "station1",
		NewState:  model.StateOn,
		FlowLpm:   21.0,
		Duration:  time.Hour,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if st, _ := a.State("station1"); st != model.StateOn {
		t.Fatalf("state = %s, want on", st)
	}
	got := pub.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected state change + result publish, got %d", len(got))
	}
	if got[0].topic != "event/pumpStateChange/station1" {
		t.Fatalf("state change topic = %s", got[0].topic)
	}
	if got[1].topic != "event/pumpResult/station1" {
		t.Fatalf("result topic = %s", got[1].topic)
	}

	var res model.PumpResultEvent
	if err := json.Unmarshal([]byte(got[1].payload), &res); err != nil {
		t.Fatalf("result payload: %v", err)
	}
	if res.Action != model.ActionPump || res.FlowLpm != 21.0 || res.Status != "OK" {
		t.Fatalf("unexpected result event %+v", res)
	}
	if !strings.Contains(res.Reason, "21.0") {
		t.Fatalf("result reason %q should cite the flow rate", res.Reason)
	}
}

func TestApplyStopCommand(t *testing.T) {
	pub := &fakePublisher{}
	a := newTestActuator(pub)

	_ = a.apply(model.StateChangeEvent{StationID: "station1", NewState: model.StateOn, FlowLpm: 30, Duration: time.Hour})
	pub.reset()

	if err := a.apply(model.StateChangeEvent{StationID: "station1", NewState: model.StateOff}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if st, _ := a.State("station1"); st != model.StateOff {
		t.Fatalf("state = %s, want off", st)
	}
	got := pub.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(got))
	}
	var res model.PumpResultEvent
	if err := json.Unmarshal([]byte(got[1].payload), &res); err != nil {
		t.Fatalf("result payload: %v", err)
	}
	if res.Action != model.ActionStop {
		t.Fatalf("action = %s, want STOP", res.Action)
	}
}

func TestApplyUnknownStationIsIgnored(t *testing.T) {
	pub := &fakePublisher{}
	a := newTestActuator(pub)

	if err := a.apply(model.StateChangeEvent{StationID: "ghost", NewState: model.StateOn}); err != nil {
		t.Fatalf("unknown station must not error: %v", err)
	}
	if got := pub.snapshot(); len(got) != 0 {
		t.Fatalf("unknown station must not publish, got %d", len(got))
	}
}

func TestTimedRunRevertsToOff(t *testing.T) {
	pub := &fakePublisher{}
	a := newTestActuator(pub)

	_ = a.apply(model.StateChangeEvent{
		StationID: "station1",
		NewState:  model.StateOn,
		FlowLpm:   15,
		Duration:  10 * time.Millisecond,
	})

	// command pair + auto-off pair
	deadline := time.Now().Add(time.Second)
	for {
		if len(pub.snapshot()) == 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pump did not revert to off after its run (%d publishes)", len(pub.snapshot()))
		}
		time.Sleep(5 * time.Millisecond)
	}

	if st, _ := a.State("station1"); st != model.StateOff {
		t.Fatalf("state = %s, want off after the run", st)
	}
	got := pub.snapshot()
	var res model.PumpResultEvent
	if err := json.Unmarshal([]byte(got[3].payload), &res); err != nil {
		t.Fatalf("final result payload: %v", err)
	}
	if res.Reason != "done" {
		t.Fatalf("final result reason = %q, want done", res.Reason)
	}
}
