package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMarkdownIsIdentity(t *testing.T) {
	result, err := Markdown{}.Execute(context.Background(), "# hi\n\nbody", &ExecutionContext{})
	require.NoError(t, err)
	require.Equal(t, "# hi\n\nbody", result.Markdown)
}

func TestFindExecBlocks(t *testing.T) {
	src := "intro\n\n```{python}\nprint(1)\n```\n\ntail\n\n```{.python}\nnot executable\n```\n"
	blocks := findExecBlocks(src)
	require.Len(t, blocks, 1)
	require.Equal(t, "python", blocks[0].lang)
	require.Equal(t, "print(1)", blocks[0].code)
	require.Equal(t, src[blocks[0].start:blocks[0].end], "```{python}\nprint(1)\n```\n")
}

func TestKernelForLanguage(t *testing.T) {
	cases := map[string]string{"python": "python3", "py": "python3", "r": "ir", "julia": "julia", "ts": "deno"}
	for lang, want := range cases {
		got, ok := kernelForLanguage(lang)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := kernelForLanguage("cobol")
	require.False(t, ok)
}

type stubTransport struct {
	calls int
}

func (s *stubTransport) Execute(_ context.Context, kernel, code string) ([]CellOutput, error) {
	s.calls++
	return []CellOutput{{Kind: OutputStdout, Text: "42"}}, nil
}

func TestJupyterExecuteSplicesOutput(t *testing.T) {
	transport := &stubTransport{}
	daemon := NewKernelDaemon(transport)
	eng := Jupyter{Daemon: daemon}

	src := "before\n\n```{python}\nprint(42)\n```\n\nafter\n"
	result, err := eng.Execute(context.Background(), src, &ExecutionContext{Cwd: "/tmp/project"})
	require.NoError(t, err)
	require.Contains(t, result.Markdown, "```{.cell-output-stdout}\n42\n```")
	require.Contains(t, result.Markdown, "before")
	require.Contains(t, result.Markdown, "after")
	require.Equal(t, 1, transport.calls)
}

func TestKernelDaemonReusesSessionPerCwd(t *testing.T) {
	daemon := NewKernelDaemon(&stubTransport{})
	ctx := context.Background()
	s1, err := daemon.Session(ctx, "python3", "/a")
	require.NoError(t, err)
	s2, err := daemon.Session(ctx, "python3", "/a")
	require.NoError(t, err)
	require.Same(t, s1, s2)

	s3, err := daemon.Session(ctx, "python3", "/b")
	require.NoError(t, err)
	require.NotSame(t, s1, s3)
}

func TestRenderOutputsStripsANSIFromTraceback(t *testing.T) {
	out := renderOutputs([]CellOutput{{
		Kind:      OutputError,
		Traceback: []string{"\x1b[31mTraceback\x1b[0m", "ValueError: boom"},
	}})
	require.Contains(t, out, "{.cell-output-error}")
	require.Contains(t, out, "Traceback")
	require.NotContains(t, out, "\x1b[")
}
