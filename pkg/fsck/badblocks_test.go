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
	"testing"

	"github.com/minio/vsfsck/pkg/vsfs"
)

func TestResolveBadBlocks(t *testing.T) {
	testCases := []struct {
		corrupt       func(f *fixture)
		expectedFound bool
		cleared       []int
	}{
		{func(f *fixture) {}, false, nil},
		{func(f *fixture) { f.own(70, 5000) }, true, []int{70}},
		{
			func(f *fixture) {
				f.own(70, vsfs.TotalBlocks)
				f.inodes[75] = vsfs.Inode{DTime: 1, DirectBlock: 0xFFFFFFFF}
			},
			true,
			[]int{70, 75},
		},
		// pointers into the metadata blocks
		{func(f *fixture) { f.own(70, vsfs.InodeTableStart) }, true, []int{70}},
		{func(f *fixture) { f.inodes[71] = vsfs.Inode{DirectBlock: 1} }, true, []int{71}},
		// last valid block is kept
		{func(f *fixture) { f.own(70, vsfs.TotalBlocks-1) }, false, nil},
	}

	for i, testCase := range testCases {
		f := newFixture()
		f.ownAll()
		testCase.corrupt(f)

		s := load(t, f.image())
		s.resolveBadBlocks()

		if s.Report().BadBlocksFound != testCase.expectedFound {
			t.Fatalf("case %v: found: expected: %v, got: %v", i+1, testCase.expectedFound, s.Report().BadBlocksFound)
		}
		if fixes := s.Report().Count(PassBadBlocks, SeverityFix); fixes != len(testCase.cleared) {
			t.Fatalf("case %v: fixes: expected: %v, got: %v", i+1, len(testCase.cleared), fixes)
		}
		for _, slot := range testCase.cleared {
			inode := s.Inode(slot)
			if inode.DirectBlock != 0 {
				t.Fatalf("case %v: inode %v still references block %v", i+1, slot, inode.DirectBlock)
			}
			// liveness is left alone
			if inode.IsLive() != f.inodes[slot].IsLive() {
				t.Fatalf("case %v: liveness of inode %v changed", i+1, slot)
			}
		}
	}
}
