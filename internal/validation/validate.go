// Package validation provides centralized input validation logic.
// This includes namespace path validation and checkpoint name derivation.
//
// All paths are validated before any remote write is attempted, so a
// precondition violation never leaves the remote namespace half-updated.
package validation

import (
	"strings"
	"unicode"

	"github.com/modelfold/runlog/errors"
)

// ValidateNamespacePath validates a slash-joined namespace path.
// Returns ErrInvalidInput if the path is empty, contains empty segments,
// or contains control characters.
func ValidateNamespacePath(path string) error {
	if path == "" {
		return errors.New("validateNamespacePath", errors.ErrInvalidInput).
			WithMessage("namespace path cannot be empty")
	}

	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return errors.New("validateNamespacePath", errors.ErrInvalidInput).
			WithPath(path).
			WithMessage("namespace path cannot start or end with a slash")
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			return errors.New("validateNamespacePath", errors.ErrInvalidInput).
				WithPath(path).
				WithMessage("namespace path cannot contain empty segments")
		}
		if segment == "." || segment == ".." {
			return errors.New("validateNamespacePath", errors.ErrInvalidInput).
				WithPath(path).
				WithMessage("namespace path cannot contain relative segments")
		}
	}

	if hasControlCharacters(path) {
		return errors.New("validateNamespacePath", errors.ErrInvalidInput).
			WithPath(path).
			WithMessage("namespace path cannot contain control characters")
	}

	return nil
}

// CheckpointName derives the short checkpoint name from a local model path by
// stripping the checkpoint directory prefix. The path must be rooted under the
// directory; anything else is a contract violation surfaced as ErrInvalidPath.
func CheckpointName(modelPath, dirPath string) (string, error) {
	expected := strings.TrimSuffix(dirPath, "/") + "/"
	if !strings.HasPrefix(modelPath, expected) {
		return "", errors.New("checkpointName", errors.ErrInvalidPath).
			WithPath(modelPath).
			WithMessage("expected path to start with " + expected)
	}

	name := modelPath[len(expected):]
	if name == "" {
		return "", errors.New("checkpointName", errors.ErrInvalidPath).
			WithPath(modelPath).
			WithMessage("path has no name component under " + expected)
	}

	return name, nil
}

// hasControlCharacters checks if a string contains control characters.
func hasControlCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
