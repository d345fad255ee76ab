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

// Package fsck checks and repairs VSFS images.
package fsck

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/minio/vsfsck/pkg/image"
	"github.com/minio/vsfsck/pkg/vsfs"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// Options denotes checker options.
type Options struct {
	// DryRun repairs in memory only and writes nothing back.
	DryRun bool
}

// Check opens the image at path, checks and repairs it, and closes it. The
// report is returned even when the run fails part way. A canceled ctx aborts
// the run before the next step.
func Check(ctx context.Context, path string, opts Options) (report *Report, err error) {
	img, err := image.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, img.Close())
	}()

	return Run(ctx, img, opts)
}

// Run checks and repairs an already opened image. The caller owns img.
func Run(ctx context.Context, img *image.Image, opts Options) (*Report, error) {
	s := NewSession(img, opts.DryRun)
	err := s.run(ctx)
	return s.report, err
}

func (s *Session) digest() string {
	digest, err := s.image.Digest()
	if err != nil {
		s.warnf(PassIO, "Unable to compute image digest; %v", err)
	}
	return digest
}

func (s *Session) run(ctx context.Context) error {
	s.report.StartTime = time.Now()
	defer func() {
		s.report.EndTime = time.Now()
	}()

	size, err := s.image.Size()
	if err != nil {
		return err
	}
	s.report.ImageSize = size
	klog.Infof("Checking %v (%v)", s.image.Name(), humanize.IBytes(uint64(size)))
	s.report.DigestBefore = s.digest()

	steps := []struct {
		name string
		run  func() error
	}{
		{"load superblock", s.loadSuperblock},
		{"validate superblock", s.validateSuperblock},
		{"load bitmaps", s.loadBitmaps},
		{"load inode table", s.loadInodes},
		{"check data bitmap", func() error { return s.reconcileDataBitmap(true) }},
		{"check inode bitmap", s.reconcileInodeBitmap},
		{"fix data bitmap", func() error { return s.reconcileDataBitmap(false) }},
		{"fix duplicate blocks", s.resolveDuplicates},
		{"fix bad blocks", func() error { s.resolveBadBlocks(); return nil }},
		{"write bitmaps", s.persistBitmaps},
		{"write inode table", s.persistInodes},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("unable to %v; %w", step.name, err)
		}
		klog.V(1).Infof("Running %v", step.name)
		if err := step.run(); err != nil {
			klog.ErrorS(err, "unable to "+step.name, "image", s.image.Name())
			return err
		}
	}

	if !s.dryRun {
		if err := s.image.Sync(); err != nil {
			return err
		}
	}

	s.report.DigestAfter = s.digest()
	if s.report.InodesInUse, err = vsfs.CountBits(s.inodeBitmap, vsfs.InodeCount); err != nil {
		return fmt.Errorf("unable to count inodes in use; %w", err)
	}
	if s.report.BlocksInUse, err = vsfs.CountBits(s.dataBitmap, vsfs.DataBlockCount); err != nil {
		return fmt.Errorf("unable to count data blocks in use; %w", err)
	}
	klog.Infof("Check of %v completed; %v/%v inodes and %v/%v data blocks in use; %v fixes, %v warnings",
		s.image.Name(),
		s.report.InodesInUse, vsfs.InodeCount,
		s.report.BlocksInUse, vsfs.DataBlockCount,
		s.report.Fixes(), s.report.Warnings())
	return nil
}
