package inspection

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
)

// filterValues 过滤器模板可用的变量
func (t Table) filterValues(index string) map[string]string {
	return map[string]string{
		"Index":        index,
		"ParameterID":  strconv.Itoa(t.ParameterID),
		"IndexColumn":  strconv.Itoa(t.IndexColumn),
		"DetailColumn": strconv.Itoa(t.DetailColumn),
	}
}

// RenderFilters renders the table filters for one index key. The key is
// inserted as-is: no trimming, no case folding.
func (t Table) RenderFilters(index string) ([]string, error) {
	tpls := t.Filters
	if len(tpls) == 0 {
		tpls = DefaultFilters
	}
	values := t.filterValues(index)

	filters := make([]string, 0, len(tpls))
	for i, raw := range tpls {
		rendered, err := renderStringTemplate(raw, values)
		if err != nil {
			return nil, fmt.Errorf("render filter %d: %w", i, err)
		}
		filters = append(filters, rendered)
	}
	return filters, nil
}

// Helper to safely execute small templates for variable substitution
func renderStringTemplate(tmplStr string, values map[string]string) (string, error) {
	tmpl, err := template.New("filter").Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return tmplStr, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return tmplStr, err
	}
	return buf.String(), nil
}
