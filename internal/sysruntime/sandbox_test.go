package sysruntime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSandboxRefusesEscape(t *testing.T) {
	root := t.TempDir()
	sb := NewSandbox(root)

	_, err := sb.ReadFile(context.Background(), "../../etc/passwd")
	require.Error(t, err)
	require.True(t, IsPathViolation(err))
}

func TestSandboxWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	sb := NewSandbox(root)
	ctx := context.Background()

	require.NoError(t, sb.WriteFile(ctx, "doc.qmd", []byte("hello")))
	got, err := sb.ReadString(ctx, "doc.qmd")
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestSandboxExecDisabledByDefault(t *testing.T) {
	sb := NewSandbox(t.TempDir())
	_, err := sb.ExecCommand(context.Background(), "echo", []string{"hi"}, nil)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindNotSupported, e.Kind)
}
