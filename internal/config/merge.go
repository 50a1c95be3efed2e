package config

// mergeTwo merges layer b (higher precedence) over layer a (lower
// precedence) per spec.md §4.4:
//
//   - scalars: B wins unless A is tagged !prefer.
//   - arrays: if B is tagged !concat, result = A ++ B; else B replaces A.
//   - maps: deep-merge key by key; keys present on only one side pass
//     through; keys on both sides recurse.
//   - interpretation hints: two incompatible hints resolve to B's hint.
func mergeTwo(a, b ConfigValue) ConfigValue {
	if a.Kind == KindNull {
		return b
	}
	if b.Kind == KindNull && a.MergeOp != MergePrefer {
		// An explicit null in B still "wins" as a replacement unless A prefers itself.
		return b
	}

	switch {
	case a.Kind == KindMap && b.Kind == KindMap:
		return mergeMaps(a, b)
	case a.Kind == KindArray && b.Kind == KindArray:
		return mergeArrays(a, b)
	default:
		return mergeScalarLike(a, b)
	}
}

func mergeScalarLike(a, b ConfigValue) ConfigValue {
	result := b
	if a.MergeOp == MergePrefer {
		result = a
	}
	result.Interpretation = resolveInterpretation(a, b)
	return result
}

func mergeArrays(a, b ConfigValue) ConfigValue {
	if b.MergeOp == MergeConcat {
		merged := make([]ConfigValue, 0, len(a.Array)+len(b.Array))
		merged = append(merged, a.Array...)
		merged = append(merged, b.Array...)
		out := b
		out.Array = merged
		out.Interpretation = resolveInterpretation(a, b)
		return out
	}
	out := b
	out.Interpretation = resolveInterpretation(a, b)
	return out
}

func mergeMaps(a, b ConfigValue) ConfigValue {
	out := ConfigValue{
		Kind:           KindMap,
		Map:            NewOrderedMap(),
		SourceInfo:     b.SourceInfo,
		Interpretation: resolveInterpretation(a, b),
	}

	if a.Map != nil {
		for pair := a.Map.Oldest(); pair != nil; pair = pair.Next() {
			out.Map.Set(pair.Key, pair.Value)
		}
	}
	if b.Map != nil {
		for pair := b.Map.Oldest(); pair != nil; pair = pair.Next() {
			if existing, ok := out.Map.Get(pair.Key); ok {
				out.Map.Set(pair.Key, mergeTwo(existing, pair.Value))
			} else {
				out.Map.Set(pair.Key, pair.Value)
			}
		}
	}
	return out
}

func resolveInterpretation(a, b ConfigValue) Interpretation {
	if b.Interpretation != InterpNone {
		return b.Interpretation
	}
	return a.Interpretation
}

// MergeLayers merges an ordered sequence of layers, earlier = lower
// precedence, left-folding mergeTwo across them.
func MergeLayers(layers []ConfigValue) ConfigValue {
	if len(layers) == 0 {
		return ConfigValue{Kind: KindNull}
	}
	acc := layers[0]
	for _, l := range layers[1:] {
		acc = mergeTwo(acc, l)
	}
	// A top-level array result carries Concat merge-op: prefer-vs-concat
	// is already resolved by the time it reaches its final form. Arrays
	// nested inside maps or arrays keep the merge-op of the layer they
	// came from.
	if acc.Kind == KindArray {
		acc.MergeOp = MergeConcat
	}
	return acc
}
