package inspection

// ParsedRow is one structured record derived from one report line.
type ParsedRow struct {
	DMAName    string `json:"dma"`
	Index      string `json:"index"`
	Comparison string `json:"passing_condition"`
	Actual     string `json:"retrieved_value"`
}

// Cells returns the row values in column order.
func (r ParsedRow) Cells() []string {
	return []string{r.DMAName, r.Index, r.Comparison, r.Actual}
}

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Argument struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Page 单页结果；本数据源总是一次性返回全部行
type Page struct {
	Columns     []Column    `json:"columns"`
	Rows        []ParsedRow `json:"rows"`
	HasNextPage bool        `json:"has_next_page"`
}

// Reason 描述一次请求为何产出（或没有产出）数据
type Reason string

const (
	ReasonOK                Reason = "ok"
	ReasonNoInput           Reason = "no_input"
	ReasonElementNotFound   Reason = "element_not_found"
	ReasonAmbiguousElement  Reason = "ambiguous_element"
	ReasonTransportFailure  Reason = "transport_failure"
	ReasonMalformedResponse Reason = "malformed_response"
	ReasonTooFewLines       Reason = "too_few_lines"
	ReasonInvalidFilter     Reason = "invalid_filter"
)

// Outcome is the internal result of one pipeline run. Any Reason other than
// ReasonOK carries no rows.
type Outcome struct {
	Rows   []ParsedRow
	Reason Reason
	// Detail 仅用于日志
	Detail string
}

func emptyOutcome(reason Reason, detail string) Outcome {
	return Outcome{Rows: []ParsedRow{}, Reason: reason, Detail: detail}
}

// Page converts the outcome to the external single-page contract.
func (o Outcome) Page() *Page {
	rows := o.Rows
	if rows == nil || o.Reason != ReasonOK {
		rows = []ParsedRow{}
	}
	return &Page{
		Columns:     Columns(),
		Rows:        rows,
		HasNextPage: false,
	}
}

// Columns returns the output column declaration in fixed order.
func Columns() []Column {
	return []Column{
		{Name: ColumnDMA, Type: "string"},
		{Name: ColumnIndex, Type: "string"},
		{Name: ColumnPassingCondition, Type: "string"},
		{Name: ColumnRetrievedValue, Type: "string"},
	}
}

// InputArguments returns the argument declaration of the data source.
func InputArguments() []Argument {
	return []Argument{{Name: ArgumentIndex, Type: "string", Required: false}}
}
