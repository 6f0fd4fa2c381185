package inspection

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/kekexiaoai/healthdetail/pkg/element"
)

// ParameterValue is the nested column/value structure returned by a table
// fetch: the top level holds columns, each column holds cells.
type ParameterValue struct {
	StringValue string           `json:"value,omitempty"`
	ArrayValue  []ParameterValue `json:"array,omitempty"`
}

// TableRequest 读取部分表格的请求
type TableRequest struct {
	AgentID     int      `json:"dmaId"`
	ElementID   int      `json:"elementId"`
	ParameterID int      `json:"parameterId"`
	Filters     []string `json:"filters"`
}

// TableSource is the external table fetch. A nil value with a nil error
// means the element returned nothing.
type TableSource interface {
	GetPartialTable(ctx context.Context, req TableRequest) (*ParameterValue, error)
}

// RawRecord is a validated two-column fetch result.
type RawRecord struct {
	TestID  string
	Details string
}

type Pipeline struct {
	ds       *DataSource
	resolver *element.Resolver
	tables   TableSource
	metrics  *Metrics
	logger   log.FieldLogger
}

type PipelineOption func(*Pipeline)

func WithLogger(l log.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

func WithMetrics(m *Metrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline wires a data source definition to its two collaborators. A nil
// definition selects DefaultDataSource.
func NewPipeline(ds *DataSource, resolver *element.Resolver, tables TableSource, opts ...PipelineOption) *Pipeline {
	if ds == nil {
		ds = DefaultDataSource()
	}
	p := &Pipeline{
		ds:       ds,
		resolver: resolver,
		tables:   tables,
		logger:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) DataSource() *DataSource {
	return p.ds
}

// Run resolves the element and fetches the rows for index. It never returns
// an error; the reason for an empty result is recorded in the outcome.
func (p *Pipeline) Run(ctx context.Context, index string) Outcome {
	logger := p.logger.WithFields(log.Fields{
		"request_id": uuid.NewString(),
		"index":      index,
	})

	out := p.run(ctx, index, logger)

	p.metrics.observe(out)
	entry := logger.WithFields(log.Fields{"reason": out.Reason, "rows": len(out.Rows)})
	if out.Detail != "" {
		entry = entry.WithField("detail", out.Detail)
	}
	if out.Reason == ReasonOK {
		entry.Debug("health check detail fetched")
	} else {
		entry.Info("health check detail empty")
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, index string, logger log.FieldLogger) Outcome {
	if index == "" {
		return emptyOutcome(ReasonNoInput, "")
	}

	var refs []element.Ref
	if p.resolver != nil {
		refs = p.resolver.Resolve(ctx, p.ds.Protocol.Name, p.ds.Protocol.Version, p.ds.Protocol.IncludeStopped)
	}

	switch len(refs) {
	case 0:
		return emptyOutcome(ReasonElementNotFound, "")
	case 1:
	default:
		return emptyOutcome(ReasonAmbiguousElement, fmt.Sprintf("%d elements match", len(refs)))
	}

	return p.fetch(ctx, refs[0], index, logger.WithField("element", refs[0].Key()))
}

// Fetch reads and parses the report of one element for index.
func (p *Pipeline) Fetch(ctx context.Context, el element.Ref, index string) Outcome {
	return p.fetch(ctx, el, index, p.logger.WithFields(log.Fields{
		"element": el.Key(),
		"index":   index,
	}))
}

func (p *Pipeline) fetch(ctx context.Context, el element.Ref, index string, logger log.FieldLogger) Outcome {
	rec, reason, detail := p.fetchRecord(ctx, el, index, logger)
	if reason != ReasonOK {
		return emptyOutcome(reason, detail)
	}

	lines := SplitReportLines(rec.Details)
	if len(lines) < 2 {
		return emptyOutcome(ReasonTooFewLines, fmt.Sprintf("%d lines", len(lines)))
	}
	return Outcome{Rows: ParseReport(lines), Reason: ReasonOK}
}

// FetchRecord issues the table request and validates the response shape.
func (p *Pipeline) FetchRecord(ctx context.Context, el element.Ref, index string) (*RawRecord, Reason) {
	rec, reason, _ := p.fetchRecord(ctx, el, index, p.logger)
	return rec, reason
}

func (p *Pipeline) fetchRecord(ctx context.Context, el element.Ref, index string, logger log.FieldLogger) (*RawRecord, Reason, string) {
	if index == "" {
		return nil, ReasonNoInput, ""
	}

	filters, err := p.ds.Table.RenderFilters(index)
	if err != nil {
		return nil, ReasonInvalidFilter, err.Error()
	}

	req := TableRequest{
		AgentID:     el.AgentID,
		ElementID:   el.ElementID,
		ParameterID: p.ds.Table.ParameterID,
		Filters:     filters,
	}
	resp, err := p.getTablePage(ctx, req)
	if err != nil {
		logger.Warnf("table fetch failed: %v", err)
		return nil, ReasonTransportFailure, err.Error()
	}

	rec, err := decodeRecord(resp)
	if err != nil {
		return nil, ReasonMalformedResponse, err.Error()
	}
	return rec, ReasonOK, ""
}

// getTablePage 调用外部接口；panic 也视为传输失败
func (p *Pipeline) getTablePage(ctx context.Context, req TableRequest) (resp *ParameterValue, err error) {
	if p.tables == nil {
		return nil, fmt.Errorf("no table source configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			resp, err = nil, fmt.Errorf("table source panicked: %v", rec)
		}
	}()
	return p.tables.GetPartialTable(ctx, req)
}

func decodeRecord(resp *ParameterValue) (*RawRecord, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response")
	}
	columns := resp.ArrayValue
	if len(columns) != 2 {
		return nil, fmt.Errorf("expected 2 columns, got %d", len(columns))
	}
	testIDs := columns[0].ArrayValue
	if len(testIDs) != 1 {
		return nil, fmt.Errorf("expected 1 test id, got %d", len(testIDs))
	}
	details := columns[1].ArrayValue
	if len(details) == 0 {
		return nil, fmt.Errorf("missing test details")
	}
	return &RawRecord{
		TestID:  testIDs[0].StringValue,
		Details: details[0].StringValue,
	}, nil
}
