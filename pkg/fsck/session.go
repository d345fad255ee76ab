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

package fsck

import (
	"errors"
	"fmt"

	"github.com/diskfs/go-diskfs/util"
	"github.com/google/uuid"
	"github.com/minio/vsfsck/pkg/image"
	"github.com/minio/vsfsck/pkg/vsfs"
	"k8s.io/klog/v2"
)

// Session holds the in-memory copy of one image for the duration of a run.
type Session struct {
	image  *image.Image
	dryRun bool
	report *Report

	superblock  vsfs.Superblock
	inodeBitmap *util.Bitmap
	dataBitmap  *util.Bitmap
	inodes      [vsfs.InodeCount]vsfs.Inode

	// usage counts live inodes claiming each absolute block. It is filled by
	// the data bitmap pass and read by the duplicate resolver.
	usage [vsfs.TotalBlocks]int
}

// NewSession returns a session over img. With dryRun set, repairs are made in
// memory only and nothing is written back.
func NewSession(img *image.Image, dryRun bool) *Session {
	s := &Session{
		image:  img,
		dryRun: dryRun,
		report: &Report{
			RunID:  uuid.New().String(),
			Image:  img.Name(),
			DryRun: dryRun,
		},
	}
	s.inodeBitmap, s.dataBitmap = vsfs.NewBitmap(), vsfs.NewBitmap()
	return s
}

// Report returns the run report.
func (s *Session) Report() *Report {
	return s.report
}

// Superblock returns the in-memory superblock.
func (s *Session) Superblock() vsfs.Superblock {
	return s.superblock
}

// Inode returns the in-memory inode at slot i.
func (s *Session) Inode(i int) vsfs.Inode {
	return s.inodes[i]
}

// InodeBitmap returns the in-memory inode bitmap. It must not be modified.
func (s *Session) InodeBitmap() *util.Bitmap {
	return s.inodeBitmap
}

// DataBitmap returns the in-memory data bitmap. It must not be modified.
func (s *Session) DataBitmap() *util.Bitmap {
	return s.dataBitmap
}

// BlockUsage returns the number of live inodes found claiming block.
func (s *Session) BlockUsage(block uint32) int {
	if block >= vsfs.TotalBlocks {
		return 0
	}
	return s.usage[block]
}

func (s *Session) fixf(pass Pass, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	klog.InfoDepth(1, message)
	s.report.add(pass, SeverityFix, message)
}

func (s *Session) findingf(pass Pass, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	klog.InfoDepth(1, message)
	s.report.add(pass, SeverityFinding, message)
}

func (s *Session) warnf(pass Pass, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	klog.WarningDepth(1, message)
	s.report.add(pass, SeverityWarning, message)
}

// readBlocks reads whole blocks; a truncated image is a warning and leaves
// the unread part zeroed.
func (s *Session) readBlocks(block int, p []byte, what string) error {
	err := s.image.ReadBlocks(block, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, image.ErrShortRead):
		s.warnf(PassIO, "Truncated %v; %v", what, err)
		return nil
	default:
		return fmt.Errorf("unable to read %v; %w", what, err)
	}
}

func (s *Session) writeBlocks(block int, p []byte, what string) error {
	if s.dryRun {
		klog.V(3).Infof("Dry run; skipping write of %v", what)
		return nil
	}
	if err := s.image.WriteBlocks(block, p); err != nil {
		return fmt.Errorf("unable to write %v; %w", what, err)
	}
	klog.V(3).Infof("Wrote %v", what)
	return nil
}

func (s *Session) loadSuperblock() error {
	buf := make([]byte, vsfs.BlockSize)
	if err := s.readBlocks(vsfs.SuperblockBlock, buf, "superblock"); err != nil {
		return err
	}
	return s.superblock.Decode(buf)
}

func (s *Session) persistSuperblock() error {
	buf := make([]byte, vsfs.BlockSize)
	if err := s.superblock.Encode(buf); err != nil {
		return err
	}
	return s.writeBlocks(vsfs.SuperblockBlock, buf, "superblock")
}

func (s *Session) loadBitmap(block int, what string) (*util.Bitmap, error) {
	buf := make([]byte, vsfs.BlockSize)
	if err := s.readBlocks(block, buf, what); err != nil {
		return nil, err
	}
	bitmap, err := vsfs.DecodeBitmap(buf)
	if err != nil {
		return nil, fmt.Errorf("unable to load %v; %w", what, err)
	}
	return bitmap, nil
}

func (s *Session) loadBitmaps() (err error) {
	if s.inodeBitmap, err = s.loadBitmap(vsfs.InodeBitmapBlock, "inode bitmap"); err != nil {
		return err
	}
	s.dataBitmap, err = s.loadBitmap(vsfs.DataBitmapBlock, "data bitmap")
	return err
}

func (s *Session) persistBitmap(bitmap *util.Bitmap, block int, what string) error {
	buf := make([]byte, vsfs.BlockSize)
	if err := vsfs.EncodeBitmap(bitmap, buf); err != nil {
		return fmt.Errorf("unable to persist %v; %w", what, err)
	}
	return s.writeBlocks(block, buf, what)
}

func (s *Session) persistBitmaps() error {
	if err := s.persistBitmap(s.inodeBitmap, vsfs.InodeBitmapBlock, "inode bitmap"); err != nil {
		return err
	}
	return s.persistBitmap(s.dataBitmap, vsfs.DataBitmapBlock, "data bitmap")
}

func testBit(bitmap *util.Bitmap, what string, i int) (bool, error) {
	set, err := bitmap.IsSet(i)
	if err != nil {
		return false, fmt.Errorf("unable to test %v bit %v; %w", what, i, err)
	}
	return set, nil
}

func markBit(bitmap *util.Bitmap, what string, i int, set bool) (err error) {
	if set {
		err = bitmap.Set(i)
	} else {
		err = bitmap.Clear(i)
	}
	if err != nil {
		return fmt.Errorf("unable to update %v bit %v; %w", what, i, err)
	}
	return nil
}

func (s *Session) loadInodes() error {
	buf := make([]byte, vsfs.InodeTableBlocks*vsfs.BlockSize)
	if err := s.readBlocks(vsfs.InodeTableStart, buf, "inode table"); err != nil {
		return err
	}
	for i := range s.inodes {
		if err := s.inodes[i].Decode(buf[i*vsfs.InodeSize : (i+1)*vsfs.InodeSize]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) persistInodes() error {
	buf := make([]byte, vsfs.InodeTableBlocks*vsfs.BlockSize)
	for i := range s.inodes {
		if err := s.inodes[i].Encode(buf[i*vsfs.InodeSize : (i+1)*vsfs.InodeSize]); err != nil {
			return err
		}
	}
	return s.writeBlocks(vsfs.InodeTableStart, buf, "inode table")
}

// readInode reads inode slot i straight from the image, bypassing the
// in-memory table.
func (s *Session) readInode(i int) (vsfs.Inode, error) {
	buf := make([]byte, vsfs.InodeSize)
	if err := s.image.ReadAt(buf, vsfs.InodeOffset(i)); err != nil {
		return vsfs.Inode{}, err
	}
	return vsfs.DecodeInode(buf)
}
