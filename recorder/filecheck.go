// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"fmt"
	"os"
)

// FileChecker decides whether path can receive a recording. The file is
// created by the caller, never by the backend.
type FileChecker func(path string) error

// CheckOutputFile accepts an existing, writable regular file.
func CheckOutputFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return f.Close()
}
