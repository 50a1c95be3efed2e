package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docforge/docforge/internal/sysruntime"
)

// knitrRequest is sent to the Knitr subprocess as a single JSON line on
// stdin: evaluate the chunk described by params against the working
// directory wd, writing results to the results file.
type knitrRequest struct {
	Action  string         `json:"action"`
	Params  map[string]any `json:"params"`
	Results string         `json:"results"`
	WD      string         `json:"wd"`
}

// knitrIncludes tolerates the subprocess encoding an empty includes set
// as either `[]` or `{}` depending on its JSON library's default for an
// empty map.
type knitrIncludes map[string]string

func (k *knitrIncludes) UnmarshalJSON(data []byte) error {
	var asArray []any
	if err := json.Unmarshal(data, &asArray); err == nil {
		*k = knitrIncludes{}
		return nil
	}
	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err != nil {
		return err
	}
	*k = knitrIncludes(asMap)
	return nil
}

type knitrResponse struct {
	Markdown        string        `json:"markdown"`
	SupportingFiles []string      `json:"supporting_files"`
	Includes        knitrIncludes `json:"includes"`
	Error           string        `json:"error"`
}

// Knitr runs R code chunks by delegating to an external `knitr` helper
// process: one JSON request over stdin, one JSON response read back
// from a results file the subprocess writes and exits.
type Knitr struct {
	// Command is the subprocess executable, overridable for tests.
	Command string
}

func (Knitr) Name() string { return "knitr" }

func (e Knitr) command() string {
	if e.Command != "" {
		return e.Command
	}
	return "knitr-helper"
}

func (e Knitr) Execute(ctx context.Context, input string, ectx *ExecutionContext) (*ExecuteResult, error) {
	if ectx.Runtime == nil {
		return nil, &ExecutionError{Kind: ErrSpawn, Message: "knitr requires a runtime"}
	}

	resultsPath, err := ectx.Runtime.XDGDir(sysruntime.XDGCache, "docforge/knitr-results.json")
	if err != nil {
		return nil, &ExecutionError{Kind: ErrIO, Message: "resolving results path", Err: err}
	}

	req := knitrRequest{
		Action:  "render",
		Params:  map[string]any{"input": input},
		Results: resultsPath,
		WD:      ectx.Cwd,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &ExecutionError{Kind: ErrInvalidOutput, Message: "encoding knitr request", Err: err}
	}

	proc, err := ectx.Runtime.ExecCommand(ctx, e.command(), nil, payload)
	if err != nil {
		return nil, &ExecutionError{Kind: ErrSpawn, Message: "spawning knitr helper", Err: err}
	}
	if proc.Code != 0 {
		return nil, &ExecutionError{Kind: ErrProcess, Message: fmt.Sprintf("knitr helper exited %d: %s", proc.Code, string(proc.Stderr))}
	}

	raw, err := ectx.Runtime.ReadFile(ctx, resultsPath)
	if err != nil {
		return nil, &ExecutionError{Kind: ErrIO, Message: "reading knitr results", Err: err}
	}

	var resp knitrResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ExecutionError{Kind: ErrInvalidOutput, Message: "decoding knitr results", Err: err}
	}
	if resp.Error != "" {
		return nil, &ExecutionError{Kind: ErrProcess, Message: resp.Error}
	}

	return &ExecuteResult{
		Markdown:        resp.Markdown,
		SupportingFiles: resp.SupportingFiles,
		Includes:        map[string]string(resp.Includes),
	}, nil
}
