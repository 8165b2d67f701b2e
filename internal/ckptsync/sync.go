package ckptsync

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the remote tree capability consumed by the synchronizer:
// existence check, structural enumeration, idempotent upload, and delete.
type Store interface {
	// Exists reports whether the namespace path has any content
	Exists(ctx context.Context, path string) (bool, error)

	// Structure returns the nested mapping rooted at path; leaves are
	// non-map marker values
	Structure(ctx context.Context, path string) (map[string]any, error)

	// UploadFile uploads a local file to the leaf at path (idempotent overwrite)
	UploadFile(ctx context.Context, path, localPath string) error

	// Delete removes the leaf at path
	Delete(ctx context.Context, path string) error
}

// Config describes a single synchronization round.
type Config struct {
	// Namespace is the slash-joined remote path checkpoint leaves live under
	Namespace string

	// Desired is the checkpoint set that should exist remotely after the round
	Desired []Checkpoint

	// RefreshExisting re-uploads desired entries that are already present
	RefreshExisting bool
}

// Result contains statistics about a synchronization round.
type Result struct {
	// Uploaded is the number of checkpoint files uploaded
	Uploaded int

	// Skipped is the number of desired leaves already present and left as-is
	Skipped int

	// Deleted is the number of stale leaves deleted
	Deleted int

	// Duration is how long the round took
	Duration time.Duration
}

// Synchronizer makes the leaf set under a remote namespace equal to a desired
// checkpoint set. It performs no retries and no rollback: a failure mid-round
// surfaces immediately and a later successful round self-heals, since the
// uploaded set is re-derived fresh from the remote tree every time.
//
// Callers must not run concurrent rounds against the same namespace; one
// round's stale computation could otherwise delete another round's uploads.
type Synchronizer struct {
	store Store
	log   logrus.FieldLogger
}

// New creates a synchronizer over the given store.
func New(store Store, log logrus.FieldLogger) *Synchronizer {
	return &Synchronizer{
		store: store,
		log:   log,
	}
}

// Sync executes one synchronization round: inventory the remote namespace,
// plan, then execute uploads followed by deletes, each as a sequential
// blocking call. The first store error aborts the round and propagates.
func (s *Synchronizer) Sync(ctx context.Context, cfg *Config) (*Result, error) {
	startTime := time.Now()

	uploaded, err := s.inventory(ctx, cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to inventory namespace %s: %w", cfg.Namespace, err)
	}

	operations := Plan(cfg.Desired, uploaded, cfg.RefreshExisting)

	result, err := s.execute(ctx, cfg.Namespace, operations)
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// inventory reads the current leaf set under the namespace. A namespace with
// no content yields an empty set rather than an error.
func (s *Synchronizer) inventory(ctx context.Context, namespace string) ([]string, error) {
	exists, err := s.store.Exists(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("existence check: %w", err)
	}
	if !exists {
		return nil, nil
	}

	structure, err := s.store.Structure(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("structure enumeration: %w", err)
	}

	return LeafPaths(structure), nil
}

// execute runs the planned operations in order: uploads, then deletes.
// Deletion order carries no dependency; stale leaves are removed one by one.
func (s *Synchronizer) execute(ctx context.Context, namespace string, operations []*Operation) (*Result, error) {
	result := &Result{}

	for _, op := range operations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		leaf := namespace + "/" + op.Name

		switch op.Type {
		case OperationUpload:
			if err := s.store.UploadFile(ctx, leaf, op.LocalPath); err != nil {
				return nil, fmt.Errorf("failed to upload %s: %w", leaf, err)
			}
			s.log.WithFields(logrus.Fields{"path": leaf, "file": op.LocalPath}).
				Debug("uploaded checkpoint")
			result.Uploaded++

		case OperationKeep:
			s.log.WithField("path", leaf).Debug("checkpoint already uploaded, skipping")
			result.Skipped++

		case OperationDelete:
			if err := s.store.Delete(ctx, leaf); err != nil {
				return nil, fmt.Errorf("failed to delete %s: %w", leaf, err)
			}
			s.log.WithField("path", leaf).Debug("deleted stale checkpoint")
			result.Deleted++
		}
	}

	return result, nil
}
