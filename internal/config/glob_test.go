package config

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/sysruntime"
)

func TestExpandGlobMatchesNestedFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "chapters"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "chapters", "intro.qmd"), []byte("# intro"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "chapters", "notes.txt"), []byte("n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.qmd"), []byte("# index"), 0o644))

	sb := sysruntime.NewSandbox(root)
	matches, err := ExpandGlob(context.Background(), sb, ".", "**/*.qmd")
	require.NoError(t, err)

	sort.Strings(matches)
	require.Equal(t, []string{"chapters/intro.qmd", "index.qmd"}, matches)
}
