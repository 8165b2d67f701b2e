package testutil

import (
	"context"
	"sort"
	"strings"

	"github.com/modelfold/runlog/runlogtypes"
)

// MemStore is an in-memory remote tree store for testing. It records every
// write so tests can assert on operation counts as well as final state.
type MemStore struct {
	// Leaves maps slash-joined leaf paths to the local file they were uploaded from
	Leaves map[string]string

	// Values maps namespace paths to the last value set on them
	Values map[string]any

	// Series maps namespace paths to appended values in order
	Series map[string][]any

	// Uploads counts UploadFile calls, including idempotent overwrites
	Uploads int

	// Deletes counts Delete calls
	Deletes int

	// UploadFileHook, when set, runs before an upload and can inject an error
	UploadFileHook func(path, localPath string) error

	// DeleteHook, when set, runs before a delete and can inject an error
	DeleteHook func(path string) error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		Leaves: make(map[string]string),
		Values: make(map[string]any),
		Series: make(map[string][]any),
	}
}

// Exists reports whether any leaf lives at or under the given path.
func (m *MemStore) Exists(_ context.Context, path string) (bool, error) {
	if _, ok := m.Leaves[path]; ok {
		return true, nil
	}
	prefix := path + "/"
	for leaf := range m.Leaves {
		if strings.HasPrefix(leaf, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// Structure returns the nested mapping of everything under path.
func (m *MemStore) Structure(_ context.Context, path string) (map[string]any, error) {
	root := make(map[string]any)
	prefix := path + "/"
	for leaf := range m.Leaves {
		if !strings.HasPrefix(leaf, prefix) {
			continue
		}
		segments := strings.Split(strings.TrimPrefix(leaf, prefix), "/")
		node := root
		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[segment] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = runlogtypes.Entry{Key: leaf}
	}
	return root, nil
}

// UploadFile records a leaf at path backed by localPath.
func (m *MemStore) UploadFile(_ context.Context, path, localPath string) error {
	if m.UploadFileHook != nil {
		if err := m.UploadFileHook(path, localPath); err != nil {
			return err
		}
	}
	m.Leaves[path] = localPath
	m.Uploads++
	return nil
}

// Delete removes the leaf at path.
func (m *MemStore) Delete(_ context.Context, path string) error {
	if m.DeleteHook != nil {
		if err := m.DeleteHook(path); err != nil {
			return err
		}
	}
	delete(m.Leaves, path)
	m.Deletes++
	return nil
}

// SetValue stores a value at path.
func (m *MemStore) SetValue(_ context.Context, path string, value any) error {
	m.Values[path] = value
	return nil
}

// AppendValue appends a value to the series at path.
func (m *MemStore) AppendValue(_ context.Context, path string, value any) error {
	m.Series[path] = append(m.Series[path], value)
	return nil
}

// SetContent stores raw content at path.
func (m *MemStore) SetContent(_ context.Context, path string, content []byte, _ string) error {
	m.Values[path] = string(content)
	return nil
}

// LeafNames returns the sorted leaf paths currently present under path.
func (m *MemStore) LeafNames(path string) []string {
	var names []string
	prefix := path + "/"
	for leaf := range m.Leaves {
		if strings.HasPrefix(leaf, prefix) {
			names = append(names, strings.TrimPrefix(leaf, prefix))
		}
	}
	sort.Strings(names)
	return names
}
