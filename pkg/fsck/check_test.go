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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/vsfsck/pkg/image"
	"github.com/minio/vsfsck/pkg/vsfs"
)

func freshFixture() *fixture {
	return newFixture()
}

func badMagicFixture() *fixture {
	f := newFixture()
	f.ownAll()
	f.superblock.Magic = 0
	return f
}

func staleInodeBitFixture() *fixture {
	f := newFixture()
	f.ownAll(5)
	f.mark(f.inodeBitmap, 5, true)
	return f
}

func duplicateFixture() *fixture {
	f := newFixture()
	f.ownAll()
	f.own(60, 20)
	return f
}

func badBlockFixture() *fixture {
	f := newFixture()
	f.ownAll(10)
	f.own(10, 9999)
	return f
}

func orphanFixture() *fixture {
	f := newFixture()
	f.ownAll()
	f.inodes[3].DTime = 5
	f.inodes[40] = vsfs.Inode{}
	f.mark(f.dataBitmap, 40, false)
	return f
}

// checkInvariants verifies the state every completed run leaves behind.
func checkInvariants(t *testing.T, name string, img *image.Image) {
	t.Helper()
	s := load(t, img)

	sb := s.Superblock()
	expected := vsfs.NewSuperblock()
	expected.InodeCount = sb.InodeCount
	expected.Reserved = sb.Reserved
	if sb != expected || sb.InodeCount > vsfs.InodeCount {
		t.Fatalf("%v: superblock not valid: %+v", name, sb)
	}

	inodeBitmap := s.InodeBitmap()
	dataBitmap := s.DataBitmap()
	owners := map[uint32]int{}
	for i := 0; i < vsfs.InodeCount; i++ {
		inode := s.Inode(i)
		if isSet(t, inodeBitmap, i) != inode.IsLive() {
			t.Fatalf("%v: inode %v: bit %v, live %v", name, i, isSet(t, inodeBitmap, i), inode.IsLive())
		}
		if inode.DirectBlock != 0 && !vsfs.IsDataBlock(inode.DirectBlock) {
			t.Fatalf("%v: inode %v references invalid block %v", name, i, inode.DirectBlock)
		}
		if !inode.IsLive() || !vsfs.IsDataBlock(inode.DirectBlock) {
			continue
		}
		if owner, found := owners[inode.DirectBlock]; found {
			t.Fatalf("%v: block %v owned by inodes %v and %v", name, inode.DirectBlock, owner, i)
		}
		owners[inode.DirectBlock] = i
		if !isSet(t, dataBitmap, vsfs.DataSlot(inode.DirectBlock)) {
			t.Fatalf("%v: owned block %v marked free", name, inode.DirectBlock)
		}
	}
}

func TestRunScenarios(t *testing.T) {
	testCases := []struct {
		name  string
		build func() *fixture
		check func(s *Session, report *Report) bool
	}{
		{
			name:  "bad magic",
			build: badMagicFixture,
			check: func(s *Session, report *Report) bool {
				return s.Superblock().Magic == vsfs.Magic && report.Fixes() == 1
			},
		},
		{
			name:  "stale inode bit",
			build: staleInodeBitFixture,
			check: func(s *Session, report *Report) bool {
				bitmap := s.InodeBitmap()
				return !isSet(t, bitmap, 5) && report.Fixes() == 1
			},
		},
		{
			name:  "duplicate block",
			build: duplicateFixture,
			check: func(s *Session, report *Report) bool {
				data := s.DataBitmap()
				return report.DuplicatesFound &&
					s.Inode(12).DirectBlock == 0 &&
					s.Inode(60).DirectBlock == 0 &&
					!isSet(t, data, 12)
			},
		},
		{
			name:  "bad block",
			build: badBlockFixture,
			check: func(s *Session, report *Report) bool {
				inode := s.Inode(10)
				return report.BadBlocksFound && inode.DirectBlock == 0 && !inode.IsLive()
			},
		},
		{
			name:  "orphans",
			build: orphanFixture,
			check: func(s *Session, report *Report) bool {
				first, second := s.Inode(3), s.Inode(40)
				return first.DirectBlock == 11 && first.IsLive() &&
					second.DirectBlock == 48 && second.IsLive()
			},
		},
		{
			name:  "fresh image",
			build: freshFixture,
			check: func(s *Session, report *Report) bool {
				for i := 0; i < vsfs.DataBlockCount; i++ {
					if s.Inode(i).DirectBlock != vsfs.DataBlock(i) {
						return false
					}
				}
				return report.Count(PassDataBitmap, SeverityFix) == vsfs.DataBlockCount &&
					report.InodesInUse == vsfs.DataBlockCount &&
					report.BlocksInUse == vsfs.DataBlockCount
			},
		},
	}

	for _, testCase := range testCases {
		img := testCase.build().image()
		report := mustRun(t, img, Options{})

		if !report.Changed() {
			t.Fatalf("%v: expected the image to change", testCase.name)
		}
		if report.Warnings() != 0 {
			t.Fatalf("%v: unexpected warnings %+v", testCase.name, report.Entries)
		}
		if !testCase.check(load(t, img), report) {
			t.Fatalf("%v: unexpected state; %+v", testCase.name, report.Entries)
		}
		checkInvariants(t, testCase.name, img)
	}
}

func TestRunIdempotent(t *testing.T) {
	testCases := []struct {
		name  string
		build func() *fixture
	}{
		{"consistent", func() *fixture { f := newFixture(); f.ownAll(); return f }},
		{"bad magic", badMagicFixture},
		{"stale inode bit", staleInodeBitFixture},
		{"bad block", badBlockFixture},
		{"orphans", orphanFixture},
		{"fresh image", freshFixture},
	}

	for _, testCase := range testCases {
		img := testCase.build().image()
		mustRun(t, img, Options{})
		first := snapshot(t, img)

		report := mustRun(t, img, Options{})
		if report.Fixes() != 0 || report.Changed() {
			t.Fatalf("%v: second run changed the image; %+v", testCase.name, report.Entries)
		}
		if !bytes.Equal(first, snapshot(t, img)) {
			t.Fatalf("%v: second run modified bytes", testCase.name)
		}
	}
}

func TestRunConverges(t *testing.T) {
	builders := []func() *fixture{
		duplicateFixture,
		func() *fixture { return randomFixture(1) },
		func() *fixture { return randomFixture(42) },
		func() *fixture { return randomFixture(2026) },
	}

	for i, build := range builders {
		img := build().image()
		mustRun(t, img, Options{})
		checkInvariants(t, "first run", img)

		mustRun(t, img, Options{})
		checkInvariants(t, "second run", img)
		second := snapshot(t, img)

		report := mustRun(t, img, Options{})
		if report.Fixes() != 0 {
			t.Fatalf("case %v: third run applied fixes %+v", i+1, report.Entries)
		}
		if !bytes.Equal(second, snapshot(t, img)) {
			t.Fatalf("case %v: third run modified bytes", i+1)
		}
	}
}

func TestRunDuplicateReadoption(t *testing.T) {
	img := duplicateFixture().image()
	mustRun(t, img, Options{})

	report := mustRun(t, img, Options{})
	if report.DuplicatesFound {
		t.Fatalf("duplicates found again")
	}
	// the revoked block goes to the first free slot
	s := load(t, img)
	if inode := s.Inode(12); inode.DirectBlock != 20 || !inode.IsLive() {
		t.Fatalf("revoked block not readopted: %+v", inode)
	}
}

func TestRunDryRun(t *testing.T) {
	for _, build := range []func() *fixture{badMagicFixture, duplicateFixture, orphanFixture, freshFixture} {
		img := build().image()
		before := snapshot(t, img)

		report := mustRun(t, img, Options{DryRun: true})
		if !report.DryRun || report.Fixes() == 0 {
			t.Fatalf("expected fixes in dry run; %+v", report.Entries)
		}
		if report.Changed() || !bytes.Equal(before, snapshot(t, img)) {
			t.Fatalf("dry run modified the image")
		}
	}
}

func TestRunTruncated(t *testing.T) {
	f := newFixture()
	f.ownAll()
	data := f.bytes()[:vsfs.DataBitmapBlock*vsfs.BlockSize+100]
	img := image.NewMemory("short.img", data)

	report := mustRun(t, img, Options{})
	if report.Count(PassIO, SeverityWarning) == 0 {
		t.Fatalf("expected truncation warnings; %+v", report.Entries)
	}
	if report.ImageSize != int64(len(data)) {
		t.Fatalf("image size: expected: %v, got: %v", len(data), report.ImageSize)
	}

	size, err := img.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(vsfs.InodeTableStart+vsfs.InodeTableBlocks)*vsfs.BlockSize {
		t.Fatalf("metadata not written back; image size %v", size)
	}
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vsfs.img")
	if err := os.WriteFile(path, badMagicFixture().bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := Check(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Image != path || report.RunID == "" || report.Duration() < 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := vsfs.DecodeSuperblock(data[:vsfs.BlockSize])
	if err != nil {
		t.Fatal(err)
	}
	if sb.Magic != vsfs.Magic {
		t.Fatalf("magic not fixed on disk: 0x%04X", sb.Magic)
	}
	checkInvariants(t, "file", image.NewMemory(path, data))
}

func TestCheckMissing(t *testing.T) {
	report, err := Check(context.Background(), filepath.Join(t.TempDir(), "missing.img"), Options{})
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got: %v", err)
	}
	if report != nil {
		t.Fatalf("expected no report, got: %+v", report)
	}
}

func TestCheckAborted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vsfs.img")
	data := badMagicFixture().bytes()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	cancelFunc()
	report, err := Check(ctx, path, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if report == nil || report.DigestBefore == "" || report.DigestAfter != "" {
		t.Fatalf("unexpected report %+v", report)
	}

	img, err := image.Open(path)
	if err != nil {
		t.Fatalf("image not released after aborted run; %v", err)
	}
	defer img.Close()
	if content := snapshot(t, img); !bytes.Equal(content, data) {
		t.Fatalf("aborted run modified the image")
	}
}
