package inspection

import (
	"context"
)

// Session binds one caller's arguments to a pipeline and serves its pages.
// The lifecycle is Columns/InputArguments, OnArgumentsProcessed, then
// GetNextPage. A session is not safe for concurrent use; create one per
// request.
type Session struct {
	pipeline *Pipeline
	index    string
	last     Outcome
}

func NewSession(p *Pipeline) *Session {
	return &Session{pipeline: p}
}

func (s *Session) Name() string {
	return s.pipeline.ds.Name
}

func (s *Session) Columns() []Column {
	return Columns()
}

func (s *Session) InputArguments() []Argument {
	return InputArguments()
}

// OnArgumentsProcessed stores the "Index" argument. An absent argument is
// passed as the empty string.
func (s *Session) OnArgumentsProcessed(index string) {
	s.index = index
}

// GetNextPage returns every row in a single, complete page.
func (s *Session) GetNextPage(ctx context.Context) *Page {
	s.last = s.pipeline.Run(ctx, s.index)
	return s.last.Page()
}

// LastReason reports why the previous page was (or was not) filled.
func (s *Session) LastReason() Reason {
	return s.last.Reason
}
