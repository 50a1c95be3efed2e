package config

// InsertPath returns root with value inserted at path, creating
// intermediate maps wherever a segment doesn't already resolve to one
// (spec.md §4.8: the TOC transform inserts navigation.toc this way).
// Existing maps along the path are updated in place, so the result
// shares them with root. An empty path replaces root outright.
func InsertPath(root ConfigValue, path []string, value ConfigValue) ConfigValue {
	if len(path) == 0 {
		return value
	}
	if root.Kind != KindMap || root.Map == nil {
		root = ConfigValue{Kind: KindMap, Map: NewOrderedMap(), SourceInfo: root.SourceInfo}
	}
	key := path[0]
	child, _ := root.Map.Get(key)
	root.Map.Set(key, InsertPath(child, path[1:], value))
	return root
}
