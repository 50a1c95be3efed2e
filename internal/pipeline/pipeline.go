// Package pipeline implements the document render pipeline (C12): a
// typed sequence of stages carrying a document from raw source bytes
// through parsing, execution, transformation and writing, with
// cancellation and observation hooks threaded through every stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
	"github.com/docforge/docforge/internal/sysruntime"
)

// DataKind discriminates the six shapes of value that flow between
// pipeline stages.
type DataKind int

const (
	LoadedSource DataKind = iota
	DocumentSource
	DocumentAst
	ExecutedDocument
	RenderedOutput
	FinalOutput
)

func (k DataKind) String() string {
	switch k {
	case LoadedSource:
		return "LoadedSource"
	case DocumentSource:
		return "DocumentSource"
	case DocumentAst:
		return "DocumentAst"
	case ExecutedDocument:
		return "ExecutedDocument"
	case RenderedOutput:
		return "RenderedOutput"
	case FinalOutput:
		return "FinalOutput"
	default:
		return "Unknown"
	}
}

// Data is the value carried between stages; only the field matching
// Kind is meaningful.
type Data struct {
	Kind DataKind

	Bytes    []byte      // LoadedSource
	Source   string      // DocumentSource: decoded, normalized text
	Document *ast.Document // DocumentAst, ExecutedDocument
	Rendered string      // RenderedOutput
	Final    []byte      // FinalOutput
}

// Stage is one step of the pipeline: a named, typed transformation
// from one Data kind to another.
type Stage interface {
	Name() string
	InputKind() DataKind
	OutputKind() DataKind
	Run(ctx context.Context, sctx *StageContext, input Data) (Data, error)
}

// ValidationError reports a Pipeline construction failure: two
// adjacent stages whose data kinds don't line up.
type ValidationError struct {
	Index      int
	Producer   string
	Consumer   string
	ProducerOut DataKind
	ConsumerIn  DataKind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline stage %d: %q produces %s but %q expects %s",
		e.Index, e.Producer, e.ProducerOut, e.Consumer, e.ConsumerIn)
}

// Pipeline is a validated, ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// New validates that each stage's output kind matches the next stage's
// input kind before constructing the pipeline.
func New(stages ...Stage) (*Pipeline, error) {
	for i := 0; i+1 < len(stages); i++ {
		if stages[i].OutputKind() != stages[i+1].InputKind() {
			return nil, &ValidationError{
				Index:       i,
				Producer:    stages[i].Name(),
				Consumer:    stages[i+1].Name(),
				ProducerOut: stages[i].OutputKind(),
				ConsumerIn:  stages[i+1].InputKind(),
			}
		}
	}
	return &Pipeline{stages: stages}, nil
}

// Observer receives lifecycle notifications as a Pipeline runs.
// Implementations must not block; Run waits for each call to return
// before proceeding to the next stage.
type Observer interface {
	StageStarted(name string)
	StageFinished(name string, dur time.Duration, err error)
}

// NoopObserver implements Observer with no-op methods.
type NoopObserver struct{}

func (NoopObserver) StageStarted(string)                  {}
func (NoopObserver) StageFinished(string, time.Duration, error) {}

// ErrCancelled is returned by Run when the CancellationToken fires
// before or during a stage.
var ErrCancelled = errors.New("pipeline run cancelled")

// CancellationToken is a one-shot cancel signal, mirroring the
// teacher's ParserPool close/cancel pattern: Cancelled is checked with
// a cheap atomic load, Done is selected on to wait for it.
type CancellationToken struct {
	cancelled atomic.Bool
	done      chan struct{}
}

// NewCancellationToken returns a ready-to-use, uncancelled token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{done: make(chan struct{})}
}

// Cancel fires the token; safe to call more than once or concurrently.
func (c *CancellationToken) Cancel() {
	if c.cancelled.CompareAndSwap(false, true) {
		close(c.done)
	}
}

// Cancelled reports whether Cancel has been called.
func (c *CancellationToken) Cancelled() bool { return c.cancelled.Load() }

// Done returns a channel closed when Cancel is called.
func (c *CancellationToken) Done() <-chan struct{} { return c.done }

// StageContext carries everything a Stage needs beyond its input Data:
// runtime capabilities, the resolved project/format configuration, a
// scratch directory, an artifact registry for intermediate files, the
// diagnostics bag stages append to, an observer and a cancellation
// token.
type StageContext struct {
	Runtime sysruntime.Runtime
	Project config.ConfigValue
	Format  config.ConfigValue

	// Registry/SourceFile/SourcePath/OriginalSource/OutputPath carry
	// per-document state between stages that isn't shaped like a Data
	// variant: the source map registry a document's spans resolve
	// against, which file it was registered under, the raw text the
	// execute stage feeds an Engine, and where the final render lands.
	Registry       *sourcemap.Registry
	SourceFile     sourcemap.FileID
	SourcePath     string
	OriginalSource string
	OutputPath     string

	TempDir   string
	artifacts map[uuid.UUID]string

	Diagnostics *diag.Bag
	Observer    Observer
	Cancel      *CancellationToken
}

// NewStageContext builds a StageContext with sane defaults for any
// field left unset (a NoopObserver, a fresh CancellationToken, an
// empty diagnostics bag).
func NewStageContext(rt sysruntime.Runtime, project, format config.ConfigValue, tempDir string) *StageContext {
	return &StageContext{
		Runtime:     rt,
		Project:     project,
		Format:      format,
		TempDir:     tempDir,
		artifacts:   map[uuid.UUID]string{},
		Diagnostics: &diag.Bag{},
		Observer:    NoopObserver{},
		Cancel:      NewCancellationToken(),
	}
}

// PutArtifact registers an intermediate file path under a fresh UUID,
// returning the key other stages can use to look it up.
func (s *StageContext) PutArtifact(path string) uuid.UUID {
	id := uuid.New()
	s.artifacts[id] = path
	return id
}

// Artifact resolves a previously registered artifact path.
func (s *StageContext) Artifact(id uuid.UUID) (string, bool) {
	path, ok := s.artifacts[id]
	return path, ok
}

// Run executes every stage in order, feeding each stage's output to
// the next. It checks sctx.Cancel before each stage and aborts with
// ErrCancelled if it has fired; a stage error aborts immediately with
// that error, wrapped with the stage's name.
func (p *Pipeline) Run(ctx context.Context, sctx *StageContext, input Data) (Data, error) {
	current := input
	for _, stage := range p.stages {
		if sctx.Cancel != nil && sctx.Cancel.Cancelled() {
			return current, ErrCancelled
		}
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		default:
		}
		if sctx.Cancel != nil {
			select {
			case <-sctx.Cancel.Done():
				return current, ErrCancelled
			default:
			}
		}

		sctx.Observer.StageStarted(stage.Name())
		start := time.Now()
		out, err := stage.Run(ctx, sctx, current)
		dur := time.Since(start)
		sctx.Observer.StageFinished(stage.Name(), dur, err)

		if err != nil {
			return current, fmt.Errorf("stage %q: %w", stage.Name(), err)
		}
		current = out
	}
	return current, nil
}
