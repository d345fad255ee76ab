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

package vsfs

// Geometry of a VSFS image. Every image has exactly this layout; the
// superblock only mirrors these values.
const (
	// Magic is the VSFS superblock magic number.
	Magic uint16 = 0xD34D

	// BlockSize is the size of every block in bytes.
	BlockSize = 4096

	// TotalBlocks is the number of blocks in an image.
	TotalBlocks = 64

	// ImageSize is the size of an image in bytes.
	ImageSize = BlockSize * TotalBlocks

	SuperblockBlock  = 0
	InodeBitmapBlock = 1
	DataBitmapBlock  = 2
	InodeTableStart  = 3
	InodeTableBlocks = 5

	// FirstDataBlock is the absolute index of the first data block.
	FirstDataBlock = 8

	// DataBlockCount is the number of data blocks, one data bitmap bit each.
	DataBlockCount = TotalBlocks - FirstDataBlock

	// InodeSize is the on-disk size of an inode record.
	InodeSize = 256

	InodesPerBlock = BlockSize / InodeSize

	// InodeCount is the number of inode slots in the inode table.
	InodeCount = InodeTableBlocks * InodesPerBlock
)

// IsDataBlock reports whether block is inside the data region.
func IsDataBlock(block uint32) bool {
	return block >= FirstDataBlock && block < TotalBlocks
}

// DataSlot converts an absolute data block index into its data bitmap index.
func DataSlot(block uint32) int {
	return int(block) - FirstDataBlock
}

// DataBlock converts a data bitmap index into an absolute block index.
func DataBlock(slot int) uint32 {
	return uint32(slot + FirstDataBlock)
}

// InodeOffset returns the byte offset of inode slot i in the image.
func InodeOffset(i int) int64 {
	return int64(InodeTableStart)*BlockSize + int64(i)*InodeSize
}
