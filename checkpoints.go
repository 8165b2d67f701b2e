// Package runlog provides checkpoint mirroring for the Logger.
package runlog

import (
	"context"
	"sort"

	"github.com/modelfold/runlog/errors"
	"github.com/modelfold/runlog/internal/ckptsync"
	"github.com/modelfold/runlog/internal/validation"
	"github.com/modelfold/runlog/runlogtypes"
)

// checkpointsKey is the namespace checkpoint leaves live under, below the prefix.
var checkpointsKey = []string{"model", "checkpoints"}

// AfterSaveCheckpoint mirrors the current checkpoint set into the run store.
// Call it after the checkpoint-selection collaborator has finished a save:
// the leaves under "<prefix>/model/checkpoints" are made equal to exactly
// {last checkpoint} ∪ best-k, uploading additions and deleting stale entries.
//
// Every model path in state must be rooted under state.DirPath; a path outside
// it fails with ErrInvalidPath before any remote write is attempted. Store
// failures propagate as-is with no retries and no rollback; the operation is
// not transactional, and a later successful call self-heals the remote set.
//
// Concurrent calls against the same run race on stale-entry deletion and are
// not supported; invoke this from a single place per run.
//
// Returns:
//   - *SyncResult: counts of uploaded, skipped and deleted checkpoint files
//   - error: ErrInvalidPath on a precondition violation, or the first store error
func (l *Logger) AfterSaveCheckpoint(
	ctx context.Context,
	state *runlogtypes.CheckpointState,
	opts ...runlogtypes.SyncOption,
) (*runlogtypes.SyncResult, error) {
	if state == nil {
		return nil, errors.NewRunError("afterSaveCheckpoint", l.runID, errors.ErrInvalidInput).
			WithMessage("checkpoint state cannot be nil")
	}
	if !l.authoritative || !l.logCheckpoints {
		return &runlogtypes.SyncResult{}, nil
	}

	cfg := &runlogtypes.SyncOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	desired, err := desiredCheckpoints(state)
	if err != nil {
		return nil, err
	}

	namespace := l.pathWithPrefix(checkpointsKey...)
	syncer := ckptsync.New(l.store, l.log)

	result, err := syncer.Sync(ctx, &ckptsync.Config{
		Namespace:       namespace,
		Desired:         desired,
		RefreshExisting: cfg.RefreshExisting,
	})
	if err != nil {
		return nil, errors.NewPathError("afterSaveCheckpoint", l.runID, namespace, err)
	}

	if err := l.recordBestModel(ctx, state); err != nil {
		return nil, err
	}

	return &runlogtypes.SyncResult{
		FilesUploaded: result.Uploaded,
		FilesSkipped:  result.Skipped,
		FilesDeleted:  result.Deleted,
		Duration:      result.Duration,
	}, nil
}

// desiredCheckpoints derives the desired leaf set from the checkpoint state.
// All paths are validated up front so a violation surfaces before any write.
// Best-k paths are visited in sorted order to keep upload order deterministic.
func desiredCheckpoints(state *runlogtypes.CheckpointState) ([]ckptsync.Checkpoint, error) {
	var desired []ckptsync.Checkpoint

	if state.LastModelPath != "" {
		name, err := validation.CheckpointName(state.LastModelPath, state.DirPath)
		if err != nil {
			return nil, err
		}
		desired = append(desired, ckptsync.Checkpoint{Name: name, LocalPath: state.LastModelPath})
	}

	bestPaths := make([]string, 0, len(state.BestModels))
	for path := range state.BestModels {
		bestPaths = append(bestPaths, path)
	}
	sort.Strings(bestPaths)

	for _, path := range bestPaths {
		name, err := validation.CheckpointName(path, state.DirPath)
		if err != nil {
			return nil, err
		}
		desired = append(desired, ckptsync.Checkpoint{Name: name, LocalPath: path})
	}

	return desired, nil
}

// recordBestModel stores the best model path and score next to the mirrored
// checkpoints, when the upstream policy has decided them.
func (l *Logger) recordBestModel(ctx context.Context, state *runlogtypes.CheckpointState) error {
	if state.BestModelPath != "" {
		path := l.pathWithPrefix("model", "best_model_path")
		if err := l.store.SetValue(ctx, path, state.BestModelPath); err != nil {
			return errors.NewPathError("afterSaveCheckpoint", l.runID, path, err)
		}
	}
	if state.BestModelScore != nil {
		path := l.pathWithPrefix("model", "best_model_score")
		if err := l.store.SetValue(ctx, path, *state.BestModelScore); err != nil {
			return errors.NewPathError("afterSaveCheckpoint", l.runID, path, err)
		}
	}
	return nil
}
