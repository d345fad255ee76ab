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

// slotAllocator hands out non-live inode slots in ascending order. The cursor
// never moves backwards, so a slot is handed out at most once.
type slotAllocator struct {
	cursor int
	count  int
	isLive func(slot int) bool
}

func newSlotAllocator(count int, isLive func(slot int) bool) *slotAllocator {
	return &slotAllocator{
		count:  count,
		isLive: isLive,
	}
}

// next returns the next non-live slot at or after the cursor. It returns
// false once the table is exhausted.
func (a *slotAllocator) next() (int, bool) {
	for a.cursor < a.count && a.isLive(a.cursor) {
		a.cursor++
	}
	if a.cursor >= a.count {
		return 0, false
	}

	slot := a.cursor
	a.cursor++
	return slot, true
}
