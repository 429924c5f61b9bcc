package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetrics_recordsEvents(t *testing.T) {
	m := New()
	m.ChunksIngested(3)
	m.ChunksIngested(2)
	m.AnswerServed("openai", true, 20*time.Millisecond)
	m.AnswerServed("extractive", false, time.Millisecond)
	m.FileUploaded("pdf", true)
	m.FileUploaded("", false)

	body := scrape(t, m)
	for _, want := range []string{
		"ragbench_chunks_ingested_total 5",
		`ragbench_answers_total{degraded="true",provider="openai"} 1`,
		`ragbench_answers_total{degraded="false",provider="extractive"} 1`,
		"ragbench_answer_duration_seconds_count 2",
		`ragbench_uploads_total{outcome="ok",source_type="pdf"} 1`,
		`ragbench_uploads_total{outcome="error",source_type="unknown"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestMetrics_independentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ChunksIngested(7)
	if body := scrape(t, b); !strings.Contains(body, "ragbench_chunks_ingested_total 0") {
		t.Error("registries should not share counters")
	}
}
