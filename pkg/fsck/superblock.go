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
	"github.com/minio/vsfsck/pkg/vsfs"
	"k8s.io/klog/v2"
)

type superblockField struct {
	name  string
	value func(sb *vsfs.Superblock) *uint32
	want  uint32
	valid func(value uint32) bool
}

var superblockFields = []superblockField{
	{
		name:  "block size",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.BlockSize },
		want:  vsfs.BlockSize,
	},
	{
		name:  "total blocks",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.TotalBlocks },
		want:  vsfs.TotalBlocks,
	},
	{
		name:  "inode bitmap block",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.InodeBitmapBlock },
		want:  vsfs.InodeBitmapBlock,
	},
	{
		name:  "data bitmap block",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.DataBitmapBlock },
		want:  vsfs.DataBitmapBlock,
	},
	{
		name:  "inode table start",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.InodeTableStart },
		want:  vsfs.InodeTableStart,
	},
	{
		name:  "data block start",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.DataBlockStart },
		want:  vsfs.FirstDataBlock,
	},
	{
		name:  "inode size",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.InodeSize },
		want:  vsfs.InodeSize,
	},
	{
		// a partially used inode table is fine, only an oversized count is not
		name:  "inode count",
		value: func(sb *vsfs.Superblock) *uint32 { return &sb.InodeCount },
		want:  vsfs.InodeCount,
		valid: func(value uint32) bool { return value <= vsfs.InodeCount },
	},
}

// validateSuperblock forces every superblock field to the compiled geometry
// and writes the superblock back right away.
func (s *Session) validateSuperblock() error {
	sb := &s.superblock

	if sb.Magic != vsfs.Magic {
		s.fixf(PassSuperblock, "Invalid magic number 0x%04X; fixed to 0x%04X", sb.Magic, vsfs.Magic)
		sb.Magic = vsfs.Magic
	} else {
		klog.Infof("Valid magic number 0x%04X", sb.Magic)
	}

	for _, field := range superblockFields {
		value := field.value(sb)
		valid := *value == field.want
		if field.valid != nil {
			valid = field.valid(*value)
		}

		if valid {
			klog.Infof("Valid %v %v", field.name, *value)
			continue
		}

		s.fixf(PassSuperblock, "Invalid %v %v; fixed to %v", field.name, *value, field.want)
		*value = field.want
	}

	return s.persistSuperblock()
}
