package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kekexiaoai/healthdetail/pkg/inspection"
)

func TestWritePage(t *testing.T) {
	page := inspection.Outcome{
		Reason: inspection.ReasonOK,
		Rows:   []inspection.ParsedRow{{DMAName: "Tuner1", Index: "3", Comparison: "≥ 10", Actual: "5"}},
	}.Page()

	var buf bytes.Buffer
	require.NoError(t, writePage(&buf, page, "table"))
	assert.Contains(t, buf.String(), "Passing Condition")
	assert.Contains(t, buf.String(), "Tuner1")

	buf.Reset()
	require.NoError(t, writePage(&buf, page, "json"))
	assert.Contains(t, buf.String(), `"has_next_page": false`)

	assert.Error(t, writePage(&buf, page, "xml"))
}

func TestQueryCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/elements/lookup":
			_, _ = w.Write([]byte(`[{"dmaId":1,"elementId":2}]`))
		case "/api/tables/partial":
			_, _ = w.Write([]byte(`{"value":{"array":[{"array":[{"value":"9"}]},{"array":[{"value":"Header\nTest case for LinkA, Threshold: 0, Operator: EqualTo, Actual: 1"}]}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--backend", "dms", "--dms-url", srv.URL, "query", "--index", "9", "--output", "json"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"dma": "LinkA"`)
	assert.Contains(t, out.String(), `"index": "N/A"`)
}

func TestBuildPipeline_UnknownBackend(t *testing.T) {
	_, err := buildPipeline(&options{backend: "snmp"}, nil)
	assert.Error(t, err)
}
