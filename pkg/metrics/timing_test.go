package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordTracksMinMaxAvg(t *testing.T) {
	m := newTimingMetric("GET /v1/items")
	m.Record(2 * time.Millisecond)
	m.Record(6 * time.Millisecond)
	m.RecordError()

	s := m.Stats()
	if s.Count != 2 || s.Errors != 1 {
		t.Errorf("count=%d errors=%d", s.Count, s.Errors)
	}
	if s.MinMs != 2 || s.MaxMs != 6 || s.AvgMs != 4 {
		t.Errorf("unexpected stats %+v", s)
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().MinMs != 0 {
		t.Errorf("Reset left %+v", m.Stats())
	}
}

func TestDisabledRecordsNothing(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("x")
	m.Record(time.Millisecond)
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("recorded %d while disabled", m.Count())
	}
}

func TestEndpointRegistry(t *testing.T) {
	SetEnabled(true)
	ResetAll()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Endpoint("GET /v1/labels").Record(time.Millisecond)
		}()
	}
	wg.Wait()
	Endpoint("POST /v1/items").Record(time.Millisecond)
	Endpoint("unused")

	stats := AllTimingStats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 endpoints with data, got %+v", stats)
	}
	if stats[0].Name != "GET /v1/labels" || stats[0].Count != 20 {
		t.Errorf("first = %+v", stats[0])
	}
	if Endpoint("GET /v1/labels") != Endpoint("GET /v1/labels") {
		t.Error("Endpoint should return the same metric for a name")
	}
}
