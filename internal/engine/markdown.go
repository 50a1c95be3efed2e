package engine

import "context"

// Markdown is the identity engine: plain markdown has no executable
// cells, so Execute returns the input unchanged.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Execute(_ context.Context, input string, _ *ExecutionContext) (*ExecuteResult, error) {
	return &ExecuteResult{Markdown: input}, nil
}
