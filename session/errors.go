// SPDX-License-Identifier: EPL-2.0

package session

import "errors"

var (
	ErrPersistenceFailed = errors.New("persisting record failed")
	// ErrBusy is returned while a stopped session is still being saved.
	ErrBusy = errors.New("previous recording is still being saved")
	// ErrNoPath is returned when a record to decode has no file.
	ErrNoPath = errors.New("record has no file path")
	// ErrFileExists is returned when an import would overwrite a file.
	ErrFileExists = errors.New("file already exists")
)
