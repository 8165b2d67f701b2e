// Package runlogtypes provides shared type definitions for the runlog module.
package runlogtypes

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/sirupsen/logrus"
)

// Entry is the leaf marker in a remote namespace structure. A Structure call
// returns a nested map of path segments whose leaves are Entry values; any
// non-Entry value in the map is a sub-namespace.
type Entry struct {
	// Key is the full store key backing the leaf
	Key string

	// Size is the stored object size in bytes
	Size int64

	// LastModified is when the leaf was last written
	LastModified time.Time

	// ETag is the store entity tag, if the backend provides one
	ETag string
}

// CheckpointState is the snapshot handed over by the checkpoint-selection
// collaborator after a checkpoint save. Which checkpoints count as "best" is
// decided upstream; this module only mirrors the result.
type CheckpointState struct {
	// DirPath is the checkpoint directory every model path must be rooted under
	DirPath string

	// LastModelPath is the most recent checkpoint, empty when none was produced
	LastModelPath string

	// BestModels maps checkpoint path to score for the currently retained
	// best-k checkpoints. Keys are unique; order is irrelevant.
	BestModels map[string]float64

	// BestModelPath is the single best checkpoint path, empty when undecided
	BestModelPath string

	// BestModelScore is the score of BestModelPath, nil when undecided
	BestModelScore *float64
}

// SyncResult contains the result of a checkpoint synchronization.
type SyncResult struct {
	// FilesUploaded is the number of checkpoint files uploaded
	FilesUploaded int

	// FilesSkipped is the number of desired files already present and left as-is
	FilesSkipped int

	// FilesDeleted is the number of stale remote leaves deleted
	FilesDeleted int

	// Duration is how long the synchronization took
	Duration time.Duration
}

// Configuration types for functional options

// LoggerConfig holds configuration for the Logger.
type LoggerConfig struct {
	Bucket          string
	Region          string
	RunName         string
	Prefix          string
	LogCheckpoints  bool
	Authoritative   bool
	CustomAWSConfig *aws.Config
	ForcePathStyle  bool
	Filesystem      fs.Filesystem // Filesystem abstraction for local checkpoint reads
	Log             logrus.FieldLogger
}

// SyncOptionConfig holds configuration for checkpoint sync via functional options.
type SyncOptionConfig struct {
	// RefreshExisting re-uploads desired entries even when a leaf with the
	// same name is already present remotely
	RefreshExisting bool
}

// Option is a functional option for configuring the Logger.
type (
	Option func(*LoggerConfig)
	// SyncOption is a functional option for configuring checkpoint synchronization.
	SyncOption func(*SyncOptionConfig)
)
