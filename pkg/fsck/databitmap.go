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

// normalizedSlots is the number of leading inode slots whose direct pointer
// is range checked before the ownership scan.
const normalizedSlots = vsfs.DataBlockCount

func outcome(dryRun bool, would, done string) string {
	if dryRun {
		return "would " + would
	}
	return done
}

// reconcileDataBitmap reconciles data block ownership with the data bitmap.
// Every data block ends up either owned by a live inode and marked
// allocated, or is reported as unresolved. Unreferenced blocks are adopted by
// the next non-live inode slot rather than freed.
//
// With dryRun set nothing is modified; the decisions are only logged as
// diagnostic findings, including blocks which would be left unresolved.
func (s *Session) reconcileDataBitmap(dryRun bool) error {
	pass, record, unresolved := PassDataBitmap, s.fixf, s.warnf
	if dryRun {
		pass, record, unresolved = PassDiagnostic, s.findingf, s.findingf
	}

	var killed [vsfs.InodeCount]bool
	for i := 0; i < normalizedSlots; i++ {
		inode := &s.inodes[i]
		if vsfs.IsDataBlock(inode.DirectBlock) || (inode.LinksCount == 0 && inode.DTime != 0) {
			continue
		}

		killed[i] = true
		if inode.IsLive() {
			record(pass, "Inode %v points outside the data region (block %v); %v",
				i, inode.DirectBlock, outcome(dryRun, "mark deleted", "marked deleted"))
		} else {
			klog.V(2).Infof("Inode %v is free and points outside the data region (block %v); %v",
				i, inode.DirectBlock, outcome(dryRun, "stamp deletion time", "deletion time stamped"))
		}
		if dryRun {
			continue
		}

		inode.LinksCount = 0
		inode.DTime = 1
		if err := markBit(s.inodeBitmap, "inode bitmap", i, false); err != nil {
			return err
		}
	}

	isLive := func(i int) bool {
		return !killed[i] && s.inodes[i].IsLive()
	}
	slots := newSlotAllocator(vsfs.InodeCount, isLive)

	for slot := 0; slot < vsfs.DataBlockCount; slot++ {
		block := vsfs.DataBlock(slot)

		owner, count := -1, 0
		for i := range s.inodes {
			if isLive(i) && s.inodes[i].DirectBlock == block {
				if owner < 0 {
					owner = i
				}
				count++
			}
		}
		if !dryRun {
			s.usage[block] = count
		}

		allocated, err := testBit(s.dataBitmap, "data bitmap", slot)
		if err != nil {
			return err
		}
		if count > 0 {
			if allocated {
				if dryRun {
					klog.Infof("Block %v used by inode %v", block, owner)
				} else {
					klog.V(3).Infof("Block %v used by inode %v", block, owner)
				}
				continue
			}

			record(pass, "Block %v is used by inode %v but marked free; %v",
				block, owner, outcome(dryRun, "mark allocated", "marked allocated"))
			if !dryRun {
				if err := markBit(s.dataBitmap, "data bitmap", slot, true); err != nil {
					return err
				}
			}
			continue
		}

		i, found := slots.next()
		if !found {
			unresolved(pass, "No free inode to assign block %v; %v", block, outcome(dryRun, "be left unresolved", "left unresolved"))
			continue
		}

		if allocated {
			record(pass, "Block %v is marked used but unreferenced; %v inode %v",
				block, outcome(dryRun, "assign to", "assigned to"), i)
		} else {
			record(pass, "Block %v is unreferenced and not marked; %v inode %v",
				block, outcome(dryRun, "mark allocated and assign to", "marked allocated and assigned to"), i)
		}
		if dryRun {
			continue
		}

		inode := &s.inodes[i]
		inode.LinksCount = 1
		inode.DTime = 0
		inode.DirectBlock = block
		killed[i] = false
		if err := markBit(s.inodeBitmap, "inode bitmap", i, true); err != nil {
			return err
		}
		if !allocated {
			if err := markBit(s.dataBitmap, "data bitmap", slot, true); err != nil {
				return err
			}
		}
		s.usage[block] = 1
	}

	return nil
}
