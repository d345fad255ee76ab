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

// resolveBadBlocks clears every non-zero direct pointer outside the data
// region, i.e. past the end of the image or into the metadata blocks.
func (s *Session) resolveBadBlocks() {
	klog.Info("Checking for bad blocks")

	found := false
	for i := range s.inodes {
		block := s.inodes[i].DirectBlock
		if block == 0 || vsfs.IsDataBlock(block) {
			continue
		}

		found = true
		s.inodes[i].DirectBlock = 0
		s.fixf(PassBadBlocks, "Inode %v references invalid block %v; reference cleared", i, block)
	}

	s.report.BadBlocksFound = found
	if found {
		klog.Info("Bad blocks found")
	} else {
		klog.Info("Bad blocks not found")
	}
}
