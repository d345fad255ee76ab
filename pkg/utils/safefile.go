// This file is part of MinIO VSFSCK
// Copyright (c) 2026 MinIO, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package utils

import (
	"os"
	"path/filepath"
)

// SafeFile is a file whose content replaces the target file only on a
// successful Close.
type SafeFile struct {
	filename string
	tempFile *os.File
}

// NewSafeFile creates a temporary file next to filename.
func NewSafeFile(filename string) (*SafeFile, error) {
	tempFile, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &SafeFile{filename: filename, tempFile: tempFile}, nil
}

// Name returns the target file name.
func (safeFile *SafeFile) Name() string {
	return safeFile.filename
}

// Write writes to the temporary file.
func (safeFile *SafeFile) Write(p []byte) (int, error) {
	return safeFile.tempFile.Write(p)
}

// Close syncs the temporary file and renames it to the target.
func (safeFile *SafeFile) Close() (err error) {
	defer func() {
		if err != nil {
			os.Remove(safeFile.tempFile.Name())
		}
	}()

	if err = safeFile.tempFile.Sync(); err != nil {
		safeFile.tempFile.Close()
		return err
	}
	if err = safeFile.tempFile.Close(); err != nil {
		return err
	}
	return os.Rename(safeFile.tempFile.Name(), safeFile.filename)
}
