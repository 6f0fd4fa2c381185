package prom

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	log "github.com/sirupsen/logrus"

	"github.com/kekexiaoai/healthdetail/pkg/inspection"
)

// DefaultCellMetric is the info metric carrying one table cell per series.
const DefaultCellMetric = "dataminer_table_cell_info"

// 表格单元的标签
const (
	LabelParameterID model.LabelName = "parameter_id"
	LabelRowKey      model.LabelName = "row_key"
	LabelColumnID    model.LabelName = "column_id"
	LabelCellValue   model.LabelName = "value"
)

// TableSource serves partial table reads from cell series stored in
// Prometheus. Column 0 of the result always holds the row keys.
type TableSource struct {
	client *Client
	metric string
	now    func() time.Time
}

func NewTableSource(client *Client, metric string) *TableSource {
	if metric == "" {
		metric = DefaultCellMetric
	}
	return &TableSource{client: client, metric: metric, now: time.Now}
}

// GetPartialTable implements inspection.TableSource. It returns nil when the
// element has no cells for the parameter.
func (s *TableSource) GetPartialTable(ctx context.Context, req inspection.TableRequest) (*inspection.ParameterValue, error) {
	filter, err := parseFilters(req.Filters)
	if err != nil {
		return nil, err
	}

	query := s.selector(req)
	cells := make(map[string]map[int]string)
	n, err := ExecuteQuery(ctx, s.client, query, s.now(), func(sample *model.Sample) error {
		row := string(sample.Metric[LabelRowKey])
		col, err := strconv.Atoi(string(sample.Metric[LabelColumnID]))
		if err != nil {
			log.WithField("query", query).Debugf("skipping cell with bad column id %q", sample.Metric[LabelColumnID])
			return nil
		}
		if cells[row] == nil {
			cells[row] = make(map[int]string)
		}
		cells[row][col] = string(sample.Metric[LabelCellValue])
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return buildTable(cells, filter), nil
}

func (s *TableSource) selector(req inspection.TableRequest) string {
	ls := model.LabelSet{
		LabelDMAID:       model.LabelValue(strconv.Itoa(req.AgentID)),
		LabelElementID:   model.LabelValue(strconv.Itoa(req.ElementID)),
		LabelParameterID: model.LabelValue(strconv.Itoa(req.ParameterID)),
	}
	return s.metric + ls.String()
}

func buildTable(cells map[string]map[int]string, filter tableFilter) *inspection.ParameterValue {
	keys := make([]string, 0, len(cells))
	for key, row := range cells {
		if filter.matches(row) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	columns := filter.columns
	if len(columns) == 0 {
		columns = allColumns(cells)
	}

	keyCol := inspection.ParameterValue{ArrayValue: make([]inspection.ParameterValue, 0, len(keys))}
	for _, key := range keys {
		keyCol.ArrayValue = append(keyCol.ArrayValue, inspection.ParameterValue{StringValue: key})
	}

	table := &inspection.ParameterValue{ArrayValue: []inspection.ParameterValue{keyCol}}
	for _, col := range columns {
		values := inspection.ParameterValue{ArrayValue: make([]inspection.ParameterValue, 0, len(keys))}
		for _, key := range keys {
			values.ArrayValue = append(values.ArrayValue, inspection.ParameterValue{StringValue: cells[key][col]})
		}
		table.ArrayValue = append(table.ArrayValue, values)
	}
	return table
}

func allColumns(cells map[string]map[int]string) []int {
	seen := make(map[int]bool)
	var cols []int
	for _, row := range cells {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	sort.Ints(cols)
	return cols
}

// tableFilter 表示解析后的过滤器
type tableFilter struct {
	fullTable bool
	columns   []int
	values    []valueFilter
}

type valueFilter struct {
	column int
	value  string
}

func (f tableFilter) matches(row map[int]string) bool {
	for _, vf := range f.values {
		v, ok := row[vf.column]
		if !ok || v != vf.value {
			return false
		}
	}
	return true
}

// parseFilters understands "ForceFullTable=true", "columns=a,b" and
// "value=<column> == <literal>". Other filters are ignored.
func parseFilters(filters []string) (tableFilter, error) {
	var f tableFilter
	for _, raw := range filters {
		name, arg, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		switch name {
		case "ForceFullTable":
			f.fullTable = arg == "true"
		case "columns":
			for _, part := range strings.Split(arg, ",") {
				col, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return f, fmt.Errorf("invalid column filter %q: %w", raw, err)
				}
				f.columns = append(f.columns, col)
			}
		case "value":
			colStr, literal, ok := strings.Cut(arg, " == ")
			if !ok {
				return f, fmt.Errorf("unsupported value filter %q", raw)
			}
			col, err := strconv.Atoi(strings.TrimSpace(colStr))
			if err != nil {
				return f, fmt.Errorf("invalid value filter %q: %w", raw, err)
			}
			f.values = append(f.values, valueFilter{column: col, value: literal})
		}
	}
	return f, nil
}
