package config

import (
	"context"
	"fmt"

	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
	"github.com/docforge/docforge/internal/sysruntime"
)

// Loader reads layered YAML configuration files off a Runtime (so the
// same loading path works whether the pipeline is running against the
// host filesystem or a sandbox), registering each into a shared
// sourcemap.Registry and decoding it into a ConfigValue layer.
type Loader struct {
	Runtime  sysruntime.Runtime
	Registry *sourcemap.Registry
}

// NewLoader constructs a Loader over rt and reg.
func NewLoader(rt sysruntime.Runtime, reg *sourcemap.Registry) *Loader {
	return &Loader{Runtime: rt, Registry: reg}
}

// LoadLayer reads and decodes a single file, returning its ConfigValue
// and any diagnostics raised while parsing its tags.
func (l *Loader) LoadLayer(ctx context.Context, path string) (ConfigValue, *diag.Bag, error) {
	bag := &diag.Bag{}

	data, err := l.Runtime.ReadFile(ctx, path)
	if err != nil {
		return ConfigValue{}, bag, fmt.Errorf("config: reading %s: %w", path, err)
	}

	file := l.Registry.RegisterFile(path, data)
	v, err := DecodeYAML(data, file, l.Registry, bag)
	if err != nil {
		return ConfigValue{}, bag, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return v, bag, nil
}

// LoadLayers reads paths in order (lowest precedence first) and returns
// a MergedConfig view over them. Diagnostics from every layer are
// combined into a single bag; a read/parse failure on any layer aborts
// the whole load.
func (l *Loader) LoadLayers(ctx context.Context, paths []string) (*MergedConfig, *diag.Bag, error) {
	bag := &diag.Bag{}
	layers := make([]ConfigValue, 0, len(paths))

	for _, p := range paths {
		v, layerBag, err := l.LoadLayer(ctx, p)
		bag.Extend(layerBag)
		if err != nil {
			return nil, bag, err
		}
		layers = append(layers, v)
	}

	return NewMergedConfig(layers), bag, nil
}
