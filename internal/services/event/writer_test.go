package event

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// stubWriteAPI satisfies api.WriteAPI without a live Influx connection.
type stubWriteAPI struct {
	errs chan error
}

func newStubWriteAPI() *stubWriteAPI { return &stubWriteAPI{errs: make(chan error)} }

func (s *stubWriteAPI) WriteRecord(string)                          {}
func (s *stubWriteAPI) WritePoint(*write.Point)                     {}
func (s *stubWriteAPI) Flush()                                      {}
func (s *stubWriteAPI) Errors() <-chan error                        { return s.errs }
func (s *stubWriteAPI) SetWriteFailedCallback(api.WriteFailedCallback) {}

func TestWriterTracksIngestCounts(t *testing.T) {
	w := NewWriter(newStubWriteAPI())

	w.MarkIngest("pump.decision")
	w.MarkIngest("pump.result")
	w.MarkIngest("pump.result")

	if got := w.Count("pump.result"); got != 2 {
		t.Fatalf("pump.result count = %d, want 2", got)
	}
	counts := w.Counts()
	if counts["pump.decision"] != 1 || counts["pump.result"] != 2 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	// the snapshot must be detached from the writer's internal state
	counts["pump.result"] = 99
	if got := w.Count("pump.result"); got != 2 {
		t.Fatalf("mutating the snapshot leaked into the writer: %d", got)
	}
}

func TestWriterLastErrorAge(t *testing.T) {
	stub := newStubWriteAPI()
	w := NewWriter(stub)

	if w.LastErrorAge() < time.Hour {
		t.Fatalf("fresh writer must report a stale last error, got %s", w.LastErrorAge())
	}

	stub.errs <- errTest{}
	deadline := time.Now().Add(time.Second)
	for w.LastErrorAge() > time.Minute {
		if time.Now().After(deadline) {
			t.Fatalf("write error was not recorded")
		}
		time.Sleep(time.Millisecond)
	}
}

type errTest struct{}

func (errTest) Error() string { return "write failed" }

func TestHealthzReportsIngestedCounts(t *testing.T) {
	w := NewWriter(newStubWriteAPI())
	w.MarkIngest("pump.result")

	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil, w).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	var body struct {
		Status   string           `json:"status"`
		Ingested map[string]int64 `json:"ingested"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if body.Ingested["pump.result"] != 1 {
		t.Fatalf("ingested counts missing from healthz: %+v", body.Ingested)
	}
	if body.Status != "down" {
		t.Fatalf("no deps wired should report down, got %q", body.Status)
	}
}
