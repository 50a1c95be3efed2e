package config

import (
	"context"
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/docforge/docforge/internal/sysruntime"
)

// ExpandGlob resolves a !glob-tagged pattern against root using rt,
// walking the directory tree and matching each file's root-relative,
// slash-separated path against pattern with doublestar semantics
// ("**" spans directory boundaries). Results are returned in the
// order directories were visited; callers that need deterministic
// output should sort.
func ExpandGlob(ctx context.Context, rt sysruntime.Runtime, root, pattern string) ([]string, error) {
	var matches []string
	if err := walkGlob(ctx, rt, root, "", pattern, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func walkGlob(ctx context.Context, rt sysruntime.Runtime, root, relDir, pattern string, out *[]string) error {
	dirPath := root
	if relDir != "" {
		dirPath = path.Join(root, relDir)
	}

	entries, err := rt.ListDir(ctx, dirPath)
	if err != nil {
		return fmt.Errorf("config: expanding glob %q: %w", pattern, err)
	}

	for _, entry := range entries {
		rel := entry.Name()
		if relDir != "" {
			rel = path.Join(relDir, entry.Name())
		}

		if entry.IsDir() {
			if err := walkGlob(ctx, rt, root, rel, pattern, out); err != nil {
				return err
			}
			continue
		}

		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return fmt.Errorf("config: invalid glob pattern %q: %w", pattern, err)
		}
		if ok {
			*out = append(*out, rel)
		}
	}
	return nil
}
