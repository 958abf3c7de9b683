// Package staging swaps a fully built index directory into place.
package staging

import (
	"errors"
	"fmt"
	"os"
)

// Suffixes of the sibling directories used while swapping.
const (
	stagingSuffix = ".staging"
	backupSuffix  = ".old"
)

// Dir returns the staging directory for final, emptied and ready to build into.
func Dir(final string) (string, error) {
	dir := final + stagingSuffix
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clearing %s: %w", dir, err)
	}
	return dir, nil
}

// Discard removes a staging directory after a failed build.
func Discard(dir string) {
	_ = os.RemoveAll(dir)
}

// Swap moves dir to final. Any existing final directory is kept aside
// until the move succeeds and restored if it fails.
func Swap(dir, final string) error {
	backup := final + backupSuffix
	if err := os.RemoveAll(backup); err != nil {
		return fmt.Errorf("clearing %s: %w", backup, err)
	}

	hadOld := true
	if err := os.Rename(final, backup); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("moving %s aside: %w", final, err)
		}
		hadOld = false
	}

	if err := os.Rename(dir, final); err != nil {
		if hadOld {
			_ = os.Rename(backup, final)
		}
		return fmt.Errorf("moving %s into place: %w", dir, err)
	}

	if hadOld {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("removing %s: %w", backup, err)
		}
	}
	return nil
}
