package controller

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arcticworks/icepump/internal/model"
)

type countingPublisher struct {
	mu        sync.Mutex
	published []string // topics
}

func (p *countingPublisher) PublishMessage(message interface{}) error { return nil }
func (p *countingPublisher) PublishToQos(topic string, qos byte, retained bool, message string) error {
	p.mu.Lock()
	p.published = append(p.published, topic)
	p.mu.Unlock()
	return nil
}
func (p *countingPublisher) Close() {}

func (p *countingPublisher) commandCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.published {
		if strings.HasPrefix(t, "cmd/pumpState/") {
			n++
		}
	}
	return n
}

func newTestController(pub *countingPublisher) *Controller {
	return &Controller{
		publisher:         pub,
		stations:          map[string]model.Station{"station1": {ID: "station1"}},
		pumpRunFor:        10 * time.Minute,
		decisionTopicTmpl: defaultDecisionTopic,
		commandTopicTmpl:  defaultCommandTopic,
		pumpingUntil:      make(map[string]time.Time),
	}
}

func TestConcurrentPumpOnCommandsOnlyOnce(t *testing.T) {
	pub := &countingPublisher{}
	c := newTestController(pub)
	station := model.Station{ID: "station1"}
	d := model.PumpDecision{Action: model.ActionPump, FlowLpm: 21.0}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.commandPumpOn(station, d)
		}()
	}
	wg.Wait()

	if n := pub.commandCount(); n != 1 {
		t.Fatalf("a busy pump must be commanded on exactly once, got %d commands", n)
	}
}

func TestStopClearsBusyWindow(t *testing.T) {
	pub := &countingPublisher{}
	c := newTestController(pub)
	station := model.Station{ID: "station1"}

	c.commandPumpOn(station, model.PumpDecision{Action: model.ActionPump, FlowLpm: 21.0})
	c.commandPumpOn(station, model.PumpDecision{Action: model.ActionPump, FlowLpm: 21.0})
	if n := pub.commandCount(); n != 1 {
		t.Fatalf("second pump-on within the run window must be skipped, got %d commands", n)
	}

	c.commandPumpOff(station, model.PumpDecision{Action: model.ActionStop, Reason: "spring bloom"})
	c.commandPumpOn(station, model.PumpDecision{Action: model.ActionPump, FlowLpm: 15.0})
	if n := pub.commandCount(); n != 3 {
		t.Fatalf("stop must clear the busy window so pumping can resume, got %d commands", n)
	}
}
