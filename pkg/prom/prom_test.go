package prom

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePrometheus serves the subset of the HTTP API used by this package.
type fakePrometheus struct {
	mu      sync.Mutex
	targets []map[string]any
	series  []map[string]string
	queries []string
	fail    bool
}

func (f *fakePrometheus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "errorType": "unavailable", "error": "down for maintenance"})
		return
	}

	switch r.URL.Path {
	case "/api/v1/targets":
		writeSuccess(w, map[string]any{
			"activeTargets":  f.targets,
			"droppedTargets": []any{},
		})
	case "/api/v1/query":
		_ = r.ParseForm()
		f.queries = append(f.queries, r.Form.Get("query"))
		result := make([]map[string]any, 0, len(f.series))
		for _, s := range f.series {
			result = append(result, map[string]any{
				"metric": s,
				"value":  []any{1700000000, "1"},
			})
		}
		writeSuccess(w, map[string]any{"resultType": "vector", "result": result})
	default:
		http.NotFound(w, r)
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func activeTarget(labels map[string]string, health string) map[string]any {
	return map[string]any{
		"discoveredLabels":   map[string]string{},
		"labels":             labels,
		"scrapePool":         "dataminer",
		"scrapeUrl":          "http://" + labels["element_name"] + "/metrics",
		"globalUrl":          "http://" + labels["element_name"] + "/metrics",
		"lastError":          "",
		"lastScrape":         "2024-09-03T10:00:00Z",
		"lastScrapeDuration": 0.01,
		"health":             health,
	}
}

func newTestClient(t *testing.T, fake *fakePrometheus) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client
}
