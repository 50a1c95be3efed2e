// Package engine implements the text-in/text-out code-execution
// contract (C10): markdown (identity), Jupyter (kernel sessions) and
// Knitr (R subprocess) variants, each rewriting fenced executable
// blocks into markdown carrying their outputs.
package engine

import (
	"context"
	"time"

	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/sysruntime"
)

// ExecutionContext carries everything an Engine needs beyond the raw
// input text: the working directory, the runtime capability set, the
// resolved format metadata, and an optional execution timeout sourced
// from that metadata.
type ExecutionContext struct {
	Cwd     string
	Runtime sysruntime.Runtime
	Format  config.ConfigValue
	Timeout time.Duration
}

// ExecuteResult is an Engine's output: rewritten markdown plus whatever
// side artifacts executing it produced.
type ExecuteResult struct {
	Markdown        string
	SupportingFiles []string
	Filters         []string
	Includes        map[string]string
}

// ErrorKind classifies an ExecutionError.
type ErrorKind int

const (
	ErrSpawn ErrorKind = iota
	ErrProcess
	ErrIO
	ErrInvalidOutput
	ErrKernelNotConnected
	ErrCancelled
	ErrTimeout
	ErrNetwork
)

// ExecutionError is the uniform error type every Engine returns.
type ExecutionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Engine is a text-in/text-out code-execution backend.
type Engine interface {
	Name() string
	Execute(ctx context.Context, input string, ectx *ExecutionContext) (*ExecuteResult, error)
}
