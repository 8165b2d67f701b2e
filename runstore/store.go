// Package runstore provides the remote tree store a tracking run writes to.
//
// A run's metadata lives in a tree addressed by slash-joined path segments.
// Leaf paths correspond to uploaded files or stored values; interior paths are
// namespaces. The store is the source of truth for what has been uploaded:
// nothing is cached between calls.
package runstore

import "context"

// Store is the remote tree capability consumed by the tracking logger.
type Store interface {
	// Exists reports whether the path has any content, either a leaf at the
	// path itself or leaves below it
	Exists(ctx context.Context, path string) (bool, error)

	// Structure returns the nested mapping of everything below path. Keys are
	// path segments; leaves are runlogtypes.Entry values, sub-namespaces are
	// further maps.
	Structure(ctx context.Context, path string) (map[string]any, error)

	// UploadFile uploads a local file to the leaf at path. Uploading to a name
	// that is already present is an idempotent overwrite.
	UploadFile(ctx context.Context, path, localPath string) error

	// SetValue stores a single JSON-encoded value at path, replacing any
	// previous value
	SetValue(ctx context.Context, path string, value any) error

	// AppendValue appends a JSON-encoded value to the series at path
	AppendValue(ctx context.Context, path string, value any) error

	// SetContent stores raw content at path with a content type derived from
	// the given file extension
	SetContent(ctx context.Context, path string, content []byte, ext string) error

	// Delete removes the leaf at path
	Delete(ctx context.Context, path string) error
}
