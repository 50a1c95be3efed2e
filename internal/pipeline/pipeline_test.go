package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/diag"
)

func zeroConfig() config.ConfigValue { return config.ConfigValue{} }

type fakeStage struct {
	name       string
	in, out    DataKind
	run        func(Data) (Data, error)
}

func (f fakeStage) Name() string         { return f.name }
func (f fakeStage) InputKind() DataKind  { return f.in }
func (f fakeStage) OutputKind() DataKind { return f.out }
func (f fakeStage) Run(_ context.Context, _ *StageContext, in Data) (Data, error) {
	return f.run(in)
}

func TestNewRejectsMismatchedAdjacentKinds(t *testing.T) {
	_, err := New(
		fakeStage{name: "a", in: LoadedSource, out: DocumentSource, run: func(d Data) (Data, error) { return d, nil }},
		fakeStage{name: "b", in: DocumentAst, out: ExecutedDocument, run: func(d Data) (Data, error) { return d, nil }},
	)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "a", verr.Producer)
	require.Equal(t, "b", verr.Consumer)
}

func TestRunChainsStageOutputsInOrder(t *testing.T) {
	p, err := New(
		fakeStage{name: "double", in: LoadedSource, out: LoadedSource, run: func(d Data) (Data, error) {
			return Data{Kind: LoadedSource, Bytes: append(d.Bytes, d.Bytes...)}, nil
		}},
		fakeStage{name: "stringify", in: LoadedSource, out: DocumentSource, run: func(d Data) (Data, error) {
			return Data{Kind: DocumentSource, Source: string(d.Bytes)}, nil
		}},
	)
	require.NoError(t, err)

	sctx := NewStageContext(nil, zeroConfig(), zeroConfig(), "")
	out, err := p.Run(context.Background(), sctx, Data{Kind: LoadedSource, Bytes: []byte("ab")})
	require.NoError(t, err)
	require.Equal(t, "abab", out.Source)
}

func TestRunStopsOnStageError(t *testing.T) {
	calls := 0
	p, err := New(
		fakeStage{name: "fails", in: LoadedSource, out: DocumentSource, run: func(Data) (Data, error) {
			calls++
			return Data{}, assertErr
		}},
		fakeStage{name: "never", in: DocumentSource, out: DocumentAst, run: func(d Data) (Data, error) {
			calls++
			return d, nil
		}},
	)
	require.NoError(t, err)

	sctx := NewStageContext(nil, zeroConfig(), zeroConfig(), "")
	_, err = p.Run(context.Background(), sctx, Data{Kind: LoadedSource})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRunHonorsCancellation(t *testing.T) {
	sctx := NewStageContext(nil, zeroConfig(), zeroConfig(), "")
	sctx.Cancel.Cancel()

	p, err := New(fakeStage{name: "noop", in: LoadedSource, out: LoadedSource, run: func(d Data) (Data, error) { return d, nil }})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), sctx, Data{Kind: LoadedSource})
	require.ErrorIs(t, err, ErrCancelled)
}

func TestStageContextArtifactRoundTrip(t *testing.T) {
	sctx := NewStageContext(nil, zeroConfig(), zeroConfig(), "/tmp")
	id := sctx.PutArtifact("/tmp/out.html")
	path, ok := sctx.Artifact(id)
	require.True(t, ok)
	require.Equal(t, "/tmp/out.html", path)
}

type recordingObserver struct {
	started  []string
	finished []string
}

func (r *recordingObserver) StageStarted(name string) { r.started = append(r.started, name) }
func (r *recordingObserver) StageFinished(name string, _ time.Duration, _ error) {
	r.finished = append(r.finished, name)
}

func TestObserverSeesEveryStage(t *testing.T) {
	obs := &recordingObserver{}
	sctx := NewStageContext(nil, zeroConfig(), zeroConfig(), "")
	sctx.Observer = obs

	p, err := New(
		fakeStage{name: "one", in: LoadedSource, out: DocumentSource, run: func(Data) (Data, error) {
			return Data{Kind: DocumentSource}, nil
		}},
		fakeStage{name: "two", in: DocumentSource, out: DocumentAst, run: func(Data) (Data, error) {
			return Data{Kind: DocumentAst, Document: &ast.Document{}}, nil
		}},
	)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), sctx, Data{Kind: LoadedSource})
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, obs.started)
	require.Equal(t, []string{"one", "two"}, obs.finished)
}

var assertErr = &diagError{"boom"}

type diagError struct{ msg string }

func (e *diagError) Error() string { return e.msg }

func TestBagCollectsNothingWithoutStages(t *testing.T) {
	bag := &diag.Bag{}
	require.False(t, bag.HasErrors())
}
