package ckptsync

import "sort"

// Checkpoint is a desired remote leaf: the short name it should appear under
// and the local file backing it.
type Checkpoint struct {
	// Name is the leaf name relative to the checkpoint namespace
	Name string

	// LocalPath is the local file to upload for this leaf
	LocalPath string
}

// OperationType defines the type of sync operation.
type OperationType string

const (
	// OperationUpload indicates a checkpoint file needs to be uploaded
	OperationUpload OperationType = "upload"

	// OperationDelete indicates a stale remote leaf needs to be deleted
	OperationDelete OperationType = "delete"

	// OperationKeep indicates a desired leaf is already present and is left as-is
	OperationKeep OperationType = "keep"
)

// Operation represents a planned sync operation.
type Operation struct {
	// Type of operation (upload, delete, keep)
	Type OperationType

	// Name is the leaf name relative to the checkpoint namespace
	Name string

	// LocalPath is the local file path (for uploads)
	LocalPath string
}

// Plan compares the desired checkpoint set against the currently uploaded
// leaf names and produces the operations that make the remote namespace equal
// to the desired set.
//
// Desired entries sharing a name collapse to one operation; the "last"
// checkpoint and a best-k entry may legitimately point at the same file.
// When refreshExisting is set, desired entries are uploaded even if a leaf
// with the same name is already present (uploads are idempotent overwrites).
func Plan(desired []Checkpoint, uploaded []string, refreshExisting bool) []*Operation {
	uploadedSet := make(map[string]struct{}, len(uploaded))
	for _, name := range uploaded {
		uploadedSet[name] = struct{}{}
	}

	var operations []*Operation

	desiredSet := make(map[string]struct{}, len(desired))
	for _, ckpt := range desired {
		if _, seen := desiredSet[ckpt.Name]; seen {
			continue
		}
		desiredSet[ckpt.Name] = struct{}{}

		_, present := uploadedSet[ckpt.Name]
		if present && !refreshExisting {
			operations = append(operations, &Operation{
				Type:      OperationKeep,
				Name:      ckpt.Name,
				LocalPath: ckpt.LocalPath,
			})
			continue
		}
		operations = append(operations, &Operation{
			Type:      OperationUpload,
			Name:      ckpt.Name,
			LocalPath: ckpt.LocalPath,
		})
	}

	// Stale leaves are whatever was uploaded before but is no longer desired.
	var stale []string
	for _, name := range uploaded {
		if _, ok := desiredSet[name]; !ok {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	for _, name := range stale {
		operations = append(operations, &Operation{
			Type: OperationDelete,
			Name: name,
		})
	}

	return operations
}
