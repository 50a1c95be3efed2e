package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// maxConcurrentKernelSessions bounds how many (kernel, cwd) sessions
// the daemon keeps alive at once; each one is a real OS process. The
// least-recently-used session is torn down to make room for a new one.
const maxConcurrentKernelSessions = 8

// languageKernels maps a fenced block's declared language to the
// kernel name that executes it (spec.md §4.9).
var languageKernels = map[string]string{
	"python": "python3", "py": "python3", "python3": "python3",
	"r": "ir",
	"julia": "julia",
	"ts": "deno", "js": "deno", "javascript": "deno", "typescript": "deno",
}

func kernelForLanguage(lang string) (string, bool) {
	k, ok := languageKernels[strings.ToLower(lang)]
	return k, ok
}

// OutputKind discriminates one cell's rendered output.
type OutputKind int

const (
	OutputStdout OutputKind = iota
	OutputStderr
	OutputResultText
	OutputResultHTML
	OutputImage
	OutputError
)

// CellOutput is one piece of output produced by executing a code cell.
// Traceback is populated only for OutputError; its lines may carry ANSI
// escape codes, which renderOutputs strips.
type CellOutput struct {
	Kind      OutputKind
	Text      string
	MimeType  string
	Data      []byte
	Traceback []string
}

// KernelTransport is the wire-protocol boundary this component leaves
// abstract (spec.md §1 excludes the concrete Jupyter/ZMQ protocol): a
// real deployment supplies one that actually talks to a kernel.
// Execute runs code in the named kernel's already-started session.
type KernelTransport interface {
	Execute(ctx context.Context, kernel, code string) ([]CellOutput, error)
}

// kernelSession is one long-lived (kernel, cwd) execution context.
type kernelSession struct {
	kernel    string
	cwd       string
	transport KernelTransport
}

func (s *kernelSession) execute(ctx context.Context, code string) ([]CellOutput, error) {
	return s.transport.Execute(ctx, s.kernel, code)
}

// sessionCloser is implemented by a KernelTransport that holds a real
// OS-level kernel process needing an explicit shutdown; transports
// with nothing to tear down simply don't implement it.
type sessionCloser interface {
	Close() error
}

func (s *kernelSession) close() {
	if c, ok := s.transport.(sessionCloser); ok {
		_ = c.Close()
	}
}

// KernelDaemon is the process-wide singleton owning one session per
// (kernel, cwd), guarding concurrent first-use with a singleflight
// group keyed by the same pair (spec.md §5) and bounding the number of
// live sessions with an LRU so an unbounded mix of kernels/cwds can't
// accumulate one OS process each forever.
type KernelDaemon struct {
	mu        sync.Mutex
	sessions  *lru.Cache[string, *kernelSession]
	group     singleflight.Group
	Transport KernelTransport
}

// NewKernelDaemon builds a daemon backed by transport.
func NewKernelDaemon(transport KernelTransport) *KernelDaemon {
	cache, _ := lru.NewWithEvict[string, *kernelSession](maxConcurrentKernelSessions, func(_ string, s *kernelSession) {
		s.close()
	})
	return &KernelDaemon{sessions: cache, Transport: transport}
}

func sessionKey(kernel, cwd string) string { return kernel + "\x00" + cwd }

// Session returns the shared session for (kernel, cwd), starting one
// if none exists yet. Concurrent callers for the same key block on the
// same startup rather than racing to create duplicate sessions.
func (d *KernelDaemon) Session(ctx context.Context, kernel, cwd string) (*kernelSession, error) {
	key := sessionKey(kernel, cwd)

	d.mu.Lock()
	if s, ok := d.sessions.Get(key); ok {
		d.mu.Unlock()
		return s, nil
	}
	d.mu.Unlock()

	v, err, _ := d.group.Do(key, func() (any, error) {
		d.mu.Lock()
		if s, ok := d.sessions.Get(key); ok {
			d.mu.Unlock()
			return s, nil
		}
		d.mu.Unlock()

		s := &kernelSession{kernel: kernel, cwd: cwd, transport: d.Transport}
		d.mu.Lock()
		d.sessions.Add(key, s)
		d.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*kernelSession), nil
}

// Jupyter executes fenced `{language}` code blocks against a shared
// kernel daemon and splices their outputs back into the markdown as
// output fences, in source order (spec.md §4.9).
type Jupyter struct {
	Daemon *KernelDaemon
}

func (Jupyter) Name() string { return "jupyter" }

type execBlock struct {
	lang       string
	code       string
	start, end int // byte range of the whole fence (including delimiters) in input
}

// findExecBlocks scans for ```{language}\ncode\n```` fences. Fences
// whose info string isn't wrapped in braces, or whose braces hold a
// class (```{.python}), are left untouched — those are plain,
// non-executable code blocks.
func findExecBlocks(input string) []execBlock {
	var out []execBlock
	lines := strings.Split(input, "\n")
	offset := 0
	i := 0
	for i < len(lines) {
		line := lines[i]
		lineStart := offset
		lineLen := len(line) + 1
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```{") && strings.HasSuffix(trimmed, "}") && !strings.HasPrefix(trimmed, "```{.") {
			lang := trimmed[4 : len(trimmed)-1]
			var code []string
			j := i + 1
			closed := false
			bodyStart := lineStart + lineLen
			cursor := bodyStart
			for j < len(lines) {
				if strings.TrimSpace(lines[j]) == "```" {
					closed = true
					break
				}
				code = append(code, lines[j])
				cursor += len(lines[j]) + 1
				j++
			}
			if closed {
				end := cursor + len("```") + 1
				if end > len(input) {
					end = len(input)
				}
				out = append(out, execBlock{lang: lang, code: strings.Join(code, "\n"), start: lineStart, end: end})
				offset = end
				i = j + 1
				continue
			}
		}
		offset += lineLen
		i++
	}
	return out
}

func (e Jupyter) Execute(ctx context.Context, input string, ectx *ExecutionContext) (*ExecuteResult, error) {
	blocks := findExecBlocks(input)
	if len(blocks) == 0 {
		return &ExecuteResult{Markdown: input}, nil
	}

	var b strings.Builder
	cursor := 0
	for _, blk := range blocks {
		b.WriteString(input[cursor:blk.start])

		kernel, ok := kernelForLanguage(blk.lang)
		if !ok {
			b.WriteString(input[blk.start:blk.end])
			cursor = blk.end
			continue
		}

		fence := fmt.Sprintf("```{%s}\n%s\n```\n", blk.lang, blk.code)
		b.WriteString(fence)

		select {
		case <-ctx.Done():
			return nil, &ExecutionError{Kind: ErrCancelled, Message: "jupyter execution cancelled", Err: ctx.Err()}
		default:
		}

		session, err := e.Daemon.Session(ctx, kernel, ectx.Cwd)
		if err != nil {
			return nil, &ExecutionError{Kind: ErrKernelNotConnected, Message: "starting kernel session", Err: err}
		}
		outputs, err := session.execute(ctx, blk.code)
		if err != nil {
			return nil, &ExecutionError{Kind: ErrProcess, Message: "kernel execution failed", Err: err}
		}
		b.WriteString(renderOutputs(outputs))

		cursor = blk.end
	}
	b.WriteString(input[cursor:])
	return &ExecuteResult{Markdown: b.String()}, nil
}

func renderOutputs(outputs []CellOutput) string {
	var b strings.Builder
	for _, o := range outputs {
		switch o.Kind {
		case OutputStdout:
			fmt.Fprintf(&b, "```{.cell-output-stdout}\n%s\n```\n", o.Text)
		case OutputStderr:
			fmt.Fprintf(&b, "```{.cell-output-stderr}\n%s\n```\n", o.Text)
		case OutputResultText:
			fmt.Fprintf(&b, "```{.cell-output}\n%s\n```\n", o.Text)
		case OutputResultHTML:
			fmt.Fprintf(&b, "```{=html}\n%s\n```\n", o.Text)
		case OutputImage:
			fmt.Fprintf(&b, "![](data:%s;base64,%s)\n", o.MimeType, o.Text)
		case OutputError:
			trace := make([]string, len(o.Traceback))
			for i, line := range o.Traceback {
				trace[i] = ansi.Strip(line)
			}
			fmt.Fprintf(&b, "```{.cell-output-error}\n%s\n```\n", strings.Join(trace, "\n"))
		}
	}
	return b.String()
}
