package inspection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataSourceBytes(t *testing.T) {
	tests := map[string]struct {
		yaml    string
		wantErr bool
		check   func(t *testing.T, ds *DataSource)
	}{
		"empty document keeps defaults": {
			yaml: ``,
			check: func(t *testing.T, ds *DataSource) {
				assert.Equal(t, DefaultDataSource(), ds)
			},
		},
		"override protocol and columns": {
			yaml: `
name: Custom
protocol:
  name: My Manager
  version: "1.0.0.3"
  include_stopped: true
table:
  parameter_id: 3000
  index_column: 3001
  detail_column: 3004
`,
			check: func(t *testing.T, ds *DataSource) {
				assert.Equal(t, "Custom", ds.Name)
				assert.Equal(t, Protocol{Name: "My Manager", Version: "1.0.0.3", IncludeStopped: true}, ds.Protocol)
				assert.Equal(t, 3000, ds.Table.ParameterID)
				assert.Equal(t, 3001, ds.Table.IndexColumn)
				assert.Equal(t, 3004, ds.Table.DetailColumn)
			},
		},
		"valid schedule": {
			yaml: `
schedule:
  cron: "*/5 * * * *"
  enabled: true
`,
			check: func(t *testing.T, ds *DataSource) {
				sched, err := ds.CronSchedule()
				require.NoError(t, err)
				assert.NotNil(t, sched)
			},
		},
		"invalid cron": {
			yaml: `
schedule:
  cron: "every five minutes"
`,
			wantErr: true,
		},
		"enabled without cron": {
			yaml: `
schedule:
  enabled: true
`,
			wantErr: true,
		},
		"blank protocol name": {
			yaml: `
protocol:
  name: ""
`,
			wantErr: true,
		},
		"negative column": {
			yaml: `
table:
  detail_column: -1
`,
			wantErr: true,
		},
		"blank filter": {
			yaml: `
table:
  filters: ["columns=1", ""]
`,
			wantErr: true,
		},
		"broken yaml": {
			yaml:    "name: [",
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ds, err := ParseDataSourceBytes([]byte(test.yaml))
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if test.check != nil {
				test.check(t, ds)
			}
		})
	}
}

func TestParseDataSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasource.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: FromFile\n"), 0o600))

	ds, err := ParseDataSourceFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FromFile", ds.Name)

	_, err = ParseDataSourceFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDataSource_CronScheduleMissing(t *testing.T) {
	_, err := DefaultDataSource().CronSchedule()
	assert.Error(t, err)
}

func TestTable_RenderFilters(t *testing.T) {
	tbl := DefaultDataSource().Table

	filters, err := tbl.RenderFilters(`Idx "1"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"ForceFullTable=true", "columns=2005", `value=2001 == Idx "1"`}, filters)

	tbl.Filters = []string{"columns={{.IndexColumn}},{{.DetailColumn}}", "pid={{.ParameterID}}"}
	filters, err = tbl.RenderFilters("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"columns=2001,2005", "pid=2000"}, filters)

	tbl.Filters = []string{"{{"}
	_, err = tbl.RenderFilters("x")
	assert.Error(t, err)
}

func TestParseDataSourceFile_Testdata(t *testing.T) {
	ds, err := ParseDataSourceFile("testdata/health_check_result_detail.yaml")
	require.NoError(t, err)

	filters, err := ds.Table.RenderFilters("12")
	require.NoError(t, err)
	assert.Equal(t, []string{"ForceFullTable=true", "columns=2005", "value=2001 == 12"}, filters)
	assert.Equal(t, DefaultProtocolName, ds.Protocol.Name)
}
