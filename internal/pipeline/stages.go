package pipeline

import (
	"context"
	"fmt"

	"github.com/docforge/docforge/internal/engine"
	"github.com/docforge/docforge/internal/reader"
	"github.com/docforge/docforge/internal/reconcile"
	"github.com/docforge/docforge/internal/sourcemap"
	"github.com/docforge/docforge/internal/transform"
	"github.com/docforge/docforge/internal/writer"
)

// ReadStage loads a file's raw bytes off the configured runtime.
type ReadStage struct {
	Path string
}

func (ReadStage) Name() string          { return "read" }
func (ReadStage) InputKind() DataKind   { return LoadedSource }
func (ReadStage) OutputKind() DataKind  { return LoadedSource }

func (s ReadStage) Run(ctx context.Context, sctx *StageContext, _ Data) (Data, error) {
	raw, err := sctx.Runtime.ReadFile(ctx, s.Path)
	if err != nil {
		return Data{}, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return Data{Kind: LoadedSource, Bytes: raw}, nil
}

// DecodeStage turns raw bytes into normalized source text, stripping a
// leading UTF-8 byte-order mark if present.
type DecodeStage struct{}

func (DecodeStage) Name() string         { return "decode" }
func (DecodeStage) InputKind() DataKind  { return LoadedSource }
func (DecodeStage) OutputKind() DataKind { return DocumentSource }

func (DecodeStage) Run(_ context.Context, _ *StageContext, in Data) (Data, error) {
	b := in.Bytes
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		b = b[3:]
	}
	return Data{Kind: DocumentSource, Source: string(b)}, nil
}

// ParseStage reads normalized source text into a Document, registering
// it in sctx.Registry under sctx.SourceFile and remembering the raw
// text in sctx.OriginalSource for the execute stage.
type ParseStage struct {
	Options reader.Options
}

func (ParseStage) Name() string         { return "parse" }
func (ParseStage) InputKind() DataKind  { return DocumentSource }
func (ParseStage) OutputKind() DataKind { return DocumentAst }

func (s ParseStage) Run(_ context.Context, sctx *StageContext, in Data) (Data, error) {
	if sctx.Registry == nil {
		sctx.Registry = sourcemap.NewRegistry()
	}
	if sctx.SourceFile == 0 && sctx.SourcePath != "" {
		sctx.SourceFile = sctx.Registry.RegisterFile(sctx.SourcePath, []byte(in.Source))
	}
	doc, _, diags, err := reader.Read([]byte(in.Source), sctx.SourceFile, sctx.Registry, s.Options)
	for _, d := range diags {
		sctx.Diagnostics.Add(d)
	}
	if err != nil {
		return Data{}, fmt.Errorf("parsing document: %w", err)
	}
	sctx.OriginalSource = in.Source
	return Data{Kind: DocumentAst, Document: doc}, nil
}

// ExecuteStage runs sctx.Engine against the original source text, then
// re-parses its output and reconciles the result against the original
// AST so untouched content keeps its real source provenance (C11).
// When no Engine is configured the original AST passes through
// unchanged.
type ExecuteStage struct {
	Engine    engine.Engine
	Execution *engine.ExecutionContext
}

func (ExecuteStage) Name() string         { return "execute" }
func (ExecuteStage) InputKind() DataKind  { return DocumentAst }
func (ExecuteStage) OutputKind() DataKind { return ExecutedDocument }

func (s ExecuteStage) Run(ctx context.Context, sctx *StageContext, in Data) (Data, error) {
	if s.Engine == nil {
		return Data{Kind: ExecutedDocument, Document: in.Document}, nil
	}

	result, err := s.Engine.Execute(ctx, sctx.OriginalSource, s.Execution)
	if err != nil {
		return Data{}, fmt.Errorf("executing %s: %w", s.Engine.Name(), err)
	}

	executedDoc, _, diags, err := reader.Read([]byte(result.Markdown), sctx.SourceFile, sctx.Registry, reader.Options{})
	for _, d := range diags {
		sctx.Diagnostics.Add(d)
	}
	if err != nil {
		return Data{}, fmt.Errorf("re-parsing executed output: %w", err)
	}

	merged := reconcile.Document(in.Document, executedDoc)
	return Data{Kind: ExecutedDocument, Document: merged}, nil
}

// AstTransformStage applies a fixed list of AstTransforms to the
// executed document in place.
type AstTransformStage struct {
	Transforms []transform.AstTransform
}

func (AstTransformStage) Name() string         { return "transform" }
func (AstTransformStage) InputKind() DataKind  { return ExecutedDocument }
func (AstTransformStage) OutputKind() DataKind { return ExecutedDocument }

func (s AstTransformStage) Run(_ context.Context, sctx *StageContext, in Data) (Data, error) {
	rctx := &transform.RenderContext{
		Project:     sctx.Project,
		Format:      sctx.Format,
		Document:    in.Document,
		Diagnostics: sctx.Diagnostics,
	}
	if err := transform.Run(s.Transforms, rctx); err != nil {
		return Data{}, fmt.Errorf("applying transforms: %w", err)
	}
	return Data{Kind: ExecutedDocument, Document: in.Document}, nil
}

// WriteFormat selects which writer WriteStage dispatches to.
type WriteFormat int

const (
	WriteHTML WriteFormat = iota
	WritePlainText
	WriteJSONAst
)

// WriteStage renders the final document to one of the writers built in
// C8.
type WriteStage struct {
	Format WriteFormat
}

func (WriteStage) Name() string         { return "write" }
func (WriteStage) InputKind() DataKind  { return ExecutedDocument }
func (WriteStage) OutputKind() DataKind { return RenderedOutput }

func (s WriteStage) Run(_ context.Context, sctx *StageContext, in Data) (Data, error) {
	switch s.Format {
	case WritePlainText:
		return Data{Kind: RenderedOutput, Rendered: writer.WritePlain(in.Document)}, nil
	case WriteJSONAst:
		out, diags, err := writer.WriteJSON(in.Document, sctx.Registry)
		for _, d := range diags {
			sctx.Diagnostics.Add(d)
		}
		if err != nil {
			return Data{}, fmt.Errorf("writing JSON: %w", err)
		}
		return Data{Kind: RenderedOutput, Rendered: string(out)}, nil
	default:
		hw := writer.NewHTMLWriter()
		out, diags := hw.WriteHTML(in.Document)
		for _, d := range diags {
			sctx.Diagnostics.Add(d)
		}
		return Data{Kind: RenderedOutput, Rendered: out}, nil
	}
}

// FinalizeStage writes rendered output to sctx.OutputPath when set,
// returning the bytes either way.
type FinalizeStage struct{}

func (FinalizeStage) Name() string         { return "finalize" }
func (FinalizeStage) InputKind() DataKind  { return RenderedOutput }
func (FinalizeStage) OutputKind() DataKind { return FinalOutput }

func (FinalizeStage) Run(ctx context.Context, sctx *StageContext, in Data) (Data, error) {
	out := []byte(in.Rendered)
	if sctx.OutputPath != "" {
		if err := sctx.Runtime.WriteFile(ctx, sctx.OutputPath, out); err != nil {
			return Data{}, fmt.Errorf("writing %s: %w", sctx.OutputPath, err)
		}
	}
	return Data{Kind: FinalOutput, Final: out}, nil
}
