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

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	superblockReservedOffset = 34
	superblockReservedSize   = BlockSize - superblockReservedOffset
)

// ErrBufferSize denotes a record buffer of the wrong length.
var ErrBufferSize = errors.New("invalid buffer size")

// Superblock denotes the VSFS superblock stored in block 0.
type Superblock struct {
	Magic            uint16
	BlockSize        uint32
	TotalBlocks      uint32
	InodeBitmapBlock uint32
	DataBitmapBlock  uint32
	InodeTableStart  uint32
	DataBlockStart   uint32
	InodeSize        uint32
	InodeCount       uint32
	Reserved         [superblockReservedSize]byte
}

// NewSuperblock returns a superblock carrying the compiled geometry.
func NewSuperblock() Superblock {
	return Superblock{
		Magic:            Magic,
		BlockSize:        BlockSize,
		TotalBlocks:      TotalBlocks,
		InodeBitmapBlock: InodeBitmapBlock,
		DataBitmapBlock:  DataBitmapBlock,
		InodeTableStart:  InodeTableStart,
		DataBlockStart:   FirstDataBlock,
		InodeSize:        InodeSize,
		InodeCount:       InodeCount,
	}
}

// DecodeSuperblock decodes a superblock from a full block.
func DecodeSuperblock(b []byte) (Superblock, error) {
	var sb Superblock
	err := sb.Decode(b)
	return sb, err
}

// Decode decodes the superblock from b, which must be one block long.
func (sb *Superblock) Decode(b []byte) error {
	if len(b) != BlockSize {
		return fmt.Errorf("decoding superblock: %w; wanted %v, found %v", ErrBufferSize, BlockSize, len(b))
	}

	le := binary.LittleEndian
	sb.Magic = le.Uint16(b[0:])
	sb.BlockSize = le.Uint32(b[2:])
	sb.TotalBlocks = le.Uint32(b[6:])
	sb.InodeBitmapBlock = le.Uint32(b[10:])
	sb.DataBitmapBlock = le.Uint32(b[14:])
	sb.InodeTableStart = le.Uint32(b[18:])
	sb.DataBlockStart = le.Uint32(b[22:])
	sb.InodeSize = le.Uint32(b[26:])
	sb.InodeCount = le.Uint32(b[30:])
	copy(sb.Reserved[:], b[superblockReservedOffset:])
	return nil
}

// Encode encodes the superblock into b, which must be one block long.
func (sb *Superblock) Encode(b []byte) error {
	if len(b) != BlockSize {
		return fmt.Errorf("encoding superblock: %w; wanted %v, found %v", ErrBufferSize, BlockSize, len(b))
	}

	le := binary.LittleEndian
	le.PutUint16(b[0:], sb.Magic)
	le.PutUint32(b[2:], sb.BlockSize)
	le.PutUint32(b[6:], sb.TotalBlocks)
	le.PutUint32(b[10:], sb.InodeBitmapBlock)
	le.PutUint32(b[14:], sb.DataBitmapBlock)
	le.PutUint32(b[18:], sb.InodeTableStart)
	le.PutUint32(b[22:], sb.DataBlockStart)
	le.PutUint32(b[26:], sb.InodeSize)
	le.PutUint32(b[30:], sb.InodeCount)
	copy(b[superblockReservedOffset:], sb.Reserved[:])
	return nil
}
