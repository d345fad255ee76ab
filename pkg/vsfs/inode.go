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
	"fmt"
)

const inodeReservedOffset = 56

// Inode denotes a 256-byte inode record. Only DirectBlock addresses data;
// the indirect pointers are carried unchanged.
type Inode struct {
	Mode        uint32
	UID         uint32
	GID         uint32
	Size        uint32
	ATime       uint32
	CTime       uint32
	MTime       uint32
	DTime       uint32
	LinksCount  uint32
	BlocksCount uint32
	DirectBlock uint32
	Indirect    [3]uint32
	Reserved    [InodeSize - inodeReservedOffset]byte
}

// IsLive returns whether the inode is in use, i.e. it is linked and has not
// been deleted.
func (inode *Inode) IsLive() bool {
	return inode.LinksCount > 0 && inode.DTime == 0
}

// DecodeInode decodes one inode record.
func DecodeInode(b []byte) (Inode, error) {
	var inode Inode
	err := inode.Decode(b)
	return inode, err
}

// Decode decodes the inode from b, which must be InodeSize long.
func (inode *Inode) Decode(b []byte) error {
	if len(b) != InodeSize {
		return fmt.Errorf("decoding inode: %w; wanted %v, found %v", ErrBufferSize, InodeSize, len(b))
	}

	le := binary.LittleEndian
	inode.Mode = le.Uint32(b[0:])
	inode.UID = le.Uint32(b[4:])
	inode.GID = le.Uint32(b[8:])
	inode.Size = le.Uint32(b[12:])
	inode.ATime = le.Uint32(b[16:])
	inode.CTime = le.Uint32(b[20:])
	inode.MTime = le.Uint32(b[24:])
	inode.DTime = le.Uint32(b[28:])
	inode.LinksCount = le.Uint32(b[32:])
	inode.BlocksCount = le.Uint32(b[36:])
	inode.DirectBlock = le.Uint32(b[40:])
	for i := range inode.Indirect {
		inode.Indirect[i] = le.Uint32(b[44+4*i:])
	}
	copy(inode.Reserved[:], b[inodeReservedOffset:])
	return nil
}

// Encode encodes the inode into b, which must be InodeSize long.
func (inode *Inode) Encode(b []byte) error {
	if len(b) != InodeSize {
		return fmt.Errorf("encoding inode: %w; wanted %v, found %v", ErrBufferSize, InodeSize, len(b))
	}

	le := binary.LittleEndian
	le.PutUint32(b[0:], inode.Mode)
	le.PutUint32(b[4:], inode.UID)
	le.PutUint32(b[8:], inode.GID)
	le.PutUint32(b[12:], inode.Size)
	le.PutUint32(b[16:], inode.ATime)
	le.PutUint32(b[20:], inode.CTime)
	le.PutUint32(b[24:], inode.MTime)
	le.PutUint32(b[28:], inode.DTime)
	le.PutUint32(b[32:], inode.LinksCount)
	le.PutUint32(b[36:], inode.BlocksCount)
	le.PutUint32(b[40:], inode.DirectBlock)
	for i, ptr := range inode.Indirect {
		le.PutUint32(b[44+4*i:], ptr)
	}
	copy(b[inodeReservedOffset:], inode.Reserved[:])
	return nil
}
