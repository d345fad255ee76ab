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

// resolveDuplicates revokes every block claimed by more than one inode. No
// claimant is kept.
func (s *Session) resolveDuplicates() error {
	klog.Info("Checking for duplicate blocks")

	found := false
	for block := uint32(vsfs.FirstDataBlock); block < vsfs.TotalBlocks; block++ {
		if s.usage[block] <= 1 {
			continue
		}

		found = true
		s.fixf(PassDuplicates, "Block %v is referenced by %v inodes; revoking", block, s.usage[block])
		for i := range s.inodes {
			if s.inodes[i].DirectBlock == block {
				s.inodes[i].DirectBlock = 0
				s.fixf(PassDuplicates, "Inode %v reference to block %v cleared", i, block)
			}
		}
		if err := markBit(s.dataBitmap, "data bitmap", vsfs.DataSlot(block), false); err != nil {
			return err
		}
		s.usage[block] = 0
	}

	s.report.DuplicatesFound = found
	if found {
		klog.Info("Duplicate blocks found")
	} else {
		klog.Info("Duplicate blocks not found")
	}
	return nil
}
