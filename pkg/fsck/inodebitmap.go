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

	"github.com/minio/vsfsck/pkg/image"
	"github.com/minio/vsfsck/pkg/vsfs"
	"k8s.io/klog/v2"
)

// reconcileInodeBitmap makes inode bitmap bit i equal to the liveness of the
// on-disk inode i.
func (s *Session) reconcileInodeBitmap() error {
	for i := 0; i < vsfs.InodeCount; i++ {
		inode, err := s.readInode(i)
		if err != nil {
			if errors.Is(err, image.ErrShortRead) {
				s.warnf(PassInodeBitmap, "Unable to read inode %v; %v", i, err)
				continue
			}
			return fmt.Errorf("unable to read inode %v; %w", i, err)
		}

		live := inode.IsLive()
		allocated, err := testBit(s.inodeBitmap, "inode bitmap", i)
		if err != nil {
			return err
		}
		if allocated == live {
			klog.V(3).Infof("Inode %v bitmap bit matches liveness %v", i, live)
			continue
		}

		if err := markBit(s.inodeBitmap, "inode bitmap", i, live); err != nil {
			return err
		}
		if live {
			s.fixf(PassInodeBitmap, "Inode %v is in use but marked free; bit set", i)
		} else {
			s.fixf(PassInodeBitmap, "Inode %v is not in use but marked allocated; bit cleared", i)
		}
	}

	return nil
}
