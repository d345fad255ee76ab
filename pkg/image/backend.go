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

package image

import (
	"fmt"
	"io"
	"os"
)

// backend abstracts the storage under an image so that the checker runs the
// same way over a file and over an in-memory buffer.
type backend interface {
	io.ReaderAt
	io.WriterAt
	size() (int64, error)
	sync() error
	close() error
}

type fileBackend struct {
	f *os.File
}

var _ backend = (*fileBackend)(nil)

func (fb *fileBackend) ReadAt(p []byte, off int64) (int, error) {
	return fb.f.ReadAt(p, off)
}

func (fb *fileBackend) WriteAt(p []byte, off int64) (int, error) {
	return fb.f.WriteAt(p, off)
}

func (fb *fileBackend) size() (int64, error) {
	info, err := fb.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("unable to stat %v; %w", fb.f.Name(), err)
	}
	return info.Size(), nil
}

func (fb *fileBackend) sync() error {
	return fb.f.Sync()
}

func (fb *fileBackend) close() error {
	return fb.f.Close()
}

type memoryBackend struct {
	data []byte
}

var _ backend = (*memoryBackend)(nil)

func (mb *memoryBackend) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(mb.data)) {
		return 0, io.EOF
	}
	n := copy(p, mb.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (mb *memoryBackend) WriteAt(p []byte, off int64) (int, error) {
	if end := off + int64(len(p)); end > int64(len(mb.data)) {
		data := make([]byte, end)
		copy(data, mb.data)
		mb.data = data
	}
	return copy(mb.data[off:], p), nil
}

func (mb *memoryBackend) size() (int64, error) {
	return int64(len(mb.data)), nil
}

func (mb *memoryBackend) sync() error {
	return nil
}

func (mb *memoryBackend) close() error {
	return nil
}
