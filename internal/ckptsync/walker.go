package ckptsync

import "sort"

// LeafPaths walks a namespace structure depth-first and returns every leaf as
// a slash-joined path relative to the structure root. Any map value is treated
// as a sub-namespace; every other value is a leaf marker.
//
// The walk is restartable: it holds no state beyond the passed structure, so
// callers re-derive the uploaded set fresh on every synchronization.
func LeafPaths(structure map[string]any) []string {
	var leaves []string
	walkLeaves(structure, "", &leaves)
	sort.Strings(leaves)
	return leaves
}

func walkLeaves(node map[string]any, base string, leaves *[]string) {
	for key, value := range node {
		path := key
		if base != "" {
			path = base + "/" + key
		}
		if child, ok := value.(map[string]any); ok {
			walkLeaves(child, path, leaves)
			continue
		}
		*leaves = append(*leaves, path)
	}
}
