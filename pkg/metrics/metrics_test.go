package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("jobs_total", "Jobs processed.")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Errorf("expected 5, got %d", c.Value())
	}

	g := r.Gauge("queue_depth", "")
	g.Set(3)
	g.Inc()
	g.Dec()
	if g.Value() != 3 {
		t.Errorf("expected 3, got %d", g.Value())
	}

	// Same name returns the same instance.
	if r.Counter("jobs_total", "") != c {
		t.Error("expected idempotent counter registration")
	}
}

func TestHistogram(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)
	h.Since(time.Now())

	out := r.Render()
	if !strings.Contains(out, "latency_seconds_count 4") {
		t.Errorf("missing count in render:\n%s", out)
	}
	if !strings.Contains(out, `latency_seconds_bucket{le="+Inf"} 4`) {
		t.Errorf("missing +Inf bucket:\n%s", out)
	}
}

func TestRender_Format(t *testing.T) {
	r := New()
	r.Counter("hits_total", "Total hits.").Inc()
	r.Counter(WithLabels("hits_total", "path", "/api"), "").Inc()

	out := r.Render()
	for _, want := range []string{
		"# HELP hits_total Total hits.",
		"# TYPE hits_total counter",
		"hits_total 1",
		`hits_total{path="/api"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in render:\n%s", want, out)
		}
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("up", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "up 1") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestWithLabels(t *testing.T) {
	if got := WithLabels("m", "k", "v"); got != `m{k="v"}` {
		t.Errorf("unexpected labelled name: %s", got)
	}
	// Odd pairs fall back to the bare name.
	if got := WithLabels("m", "k"); got != "m" {
		t.Errorf("expected bare name, got %s", got)
	}
}
