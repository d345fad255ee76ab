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
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minio/sha256-simd"
	"github.com/minio/vsfsck/pkg/vsfs"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

var (
	// ErrShortRead denotes a read which ended before the requested length,
	// i.e. a truncated image.
	ErrShortRead = errors.New("short read")

	// ErrBlockOutOfRange denotes block access outside the image geometry.
	ErrBlockOutOfRange = errors.New("block out of range")

	// ErrImageBusy denotes an image locked by another checker.
	ErrImageBusy = errors.New("image is in use")
)

// Image is block addressed read/write access to a VSFS image.
type Image struct {
	name    string
	backend backend
}

// Open opens the image file at path for read/update and takes an exclusive
// lock on it. The lock is released by Close.
func Open(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open image %v; %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w; %v", ErrImageBusy, path)
		}
		return nil, fmt.Errorf("unable to lock image %v; %w", path, err)
	}

	return &Image{name: path, backend: &fileBackend{f: f}}, nil
}

// NewMemory returns an image backed by a copy of data.
func NewMemory(name string, data []byte) *Image {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Image{name: name, backend: &memoryBackend{data: buf}}
}

// Name returns the image name.
func (img *Image) Name() string {
	return img.name
}

// ReadAt fills p from offset off. On a short read the unread tail of p is
// zeroed and ErrShortRead is returned.
func (img *Image) ReadAt(p []byte, off int64) error {
	n, err := img.backend.ReadAt(p, off)
	klog.V(5).Infof("read %v/%v bytes at offset %v from %v", n, len(p), off, img.name)
	switch {
	case n == len(p):
		return nil
	case err == nil || errors.Is(err, io.EOF):
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
		return fmt.Errorf("%w; read %v of %v bytes at offset %v", ErrShortRead, n, len(p), off)
	default:
		return fmt.Errorf("unable to read %v bytes at offset %v; %w", len(p), off, err)
	}
}

// WriteAt writes p at offset off.
func (img *Image) WriteAt(p []byte, off int64) error {
	n, err := img.backend.WriteAt(p, off)
	klog.V(5).Infof("wrote %v/%v bytes at offset %v to %v", n, len(p), off, img.name)
	if err != nil {
		return fmt.Errorf("unable to write %v bytes at offset %v; %w", len(p), off, err)
	}
	if n != len(p) {
		return fmt.Errorf("unable to write %v bytes at offset %v; %w", len(p), off, io.ErrShortWrite)
	}
	return nil
}

func checkBlocks(block int, p []byte) error {
	if len(p) == 0 || len(p)%vsfs.BlockSize != 0 {
		return fmt.Errorf("buffer of %v bytes is not a whole number of blocks", len(p))
	}
	if block < 0 || block+len(p)/vsfs.BlockSize > vsfs.TotalBlocks {
		return fmt.Errorf("%w; blocks %v..%v", ErrBlockOutOfRange, block, block+len(p)/vsfs.BlockSize-1)
	}
	return nil
}

// ReadBlocks reads len(p)/BlockSize consecutive blocks starting at block.
func (img *Image) ReadBlocks(block int, p []byte) error {
	if err := checkBlocks(block, p); err != nil {
		return err
	}
	return img.ReadAt(p, int64(block)*vsfs.BlockSize)
}

// WriteBlocks writes len(p)/BlockSize consecutive blocks starting at block.
func (img *Image) WriteBlocks(block int, p []byte) error {
	if err := checkBlocks(block, p); err != nil {
		return err
	}
	return img.WriteAt(p, int64(block)*vsfs.BlockSize)
}

// Size returns the current size of the image in bytes.
func (img *Image) Size() (int64, error) {
	return img.backend.size()
}

// Bytes returns the whole image content.
func (img *Image) Bytes() ([]byte, error) {
	size, err := img.Size()
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if size == 0 {
		return data, nil
	}
	if err := img.ReadAt(data, 0); err != nil {
		return nil, err
	}
	return data, nil
}

// Digest returns the hex encoded SHA-256 of the whole image content.
func (img *Image) Digest() (string, error) {
	size, err := img.Size()
	if err != nil {
		return "", err
	}
	hash := sha256.New()
	if _, err := io.Copy(hash, io.NewSectionReader(img.backend, 0, size)); err != nil {
		return "", fmt.Errorf("unable to compute digest of %v; %w", img.name, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Sync flushes written data to stable storage.
func (img *Image) Sync() error {
	if err := img.backend.sync(); err != nil {
		return fmt.Errorf("unable to sync image %v; %w", img.name, err)
	}
	return nil
}

// Close releases the image.
func (img *Image) Close() error {
	if err := img.backend.close(); err != nil {
		return fmt.Errorf("unable to close image %v; %w", img.name, err)
	}
	return nil
}
