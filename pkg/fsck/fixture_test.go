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
	"context"
	"math/rand"
	"testing"

	"github.com/diskfs/go-diskfs/util"
	"github.com/minio/vsfsck/pkg/image"
	"github.com/minio/vsfsck/pkg/vsfs"
)

type fixture struct {
	superblock  vsfs.Superblock
	inodeBitmap *util.Bitmap
	dataBitmap  *util.Bitmap
	inodes      [vsfs.InodeCount]vsfs.Inode
}

func newFixture() *fixture {
	return &fixture{
		superblock:  vsfs.NewSuperblock(),
		inodeBitmap: vsfs.NewBitmap(),
		dataBitmap:  vsfs.NewBitmap(),
	}
}

// mark sets or clears bit i of bitmap.
func (f *fixture) mark(bitmap *util.Bitmap, i int, set bool) {
	if err := markBit(bitmap, "fixture bitmap", i, set); err != nil {
		panic(err)
	}
}

// own makes slot a live inode owning block and marks both bitmaps.
func (f *fixture) own(slot int, block uint32) {
	f.inodes[slot] = vsfs.Inode{
		Mode:        0o100644,
		UID:         1000,
		GID:         1000,
		Size:        512,
		LinksCount:  1,
		BlocksCount: 1,
		DirectBlock: block,
	}
	f.mark(f.inodeBitmap, slot, true)
	if vsfs.IsDataBlock(block) {
		f.mark(f.dataBitmap, vsfs.DataSlot(block), true)
	}
}

// ownAll hands every data block, in order, to the next slot not in skip.
func (f *fixture) ownAll(skip ...int) {
	skipped := map[int]bool{}
	for _, slot := range skip {
		skipped[slot] = true
	}

	slot := 0
	for i := 0; i < vsfs.DataBlockCount; i++ {
		for skipped[slot] {
			slot++
		}
		f.own(slot, vsfs.DataBlock(i))
		slot++
	}
}

func (f *fixture) bytes() []byte {
	data := make([]byte, vsfs.ImageSize)
	if err := f.superblock.Encode(data[:vsfs.BlockSize]); err != nil {
		panic(err)
	}
	if err := vsfs.EncodeBitmap(f.inodeBitmap, data[vsfs.InodeBitmapBlock*vsfs.BlockSize:][:vsfs.BlockSize]); err != nil {
		panic(err)
	}
	if err := vsfs.EncodeBitmap(f.dataBitmap, data[vsfs.DataBitmapBlock*vsfs.BlockSize:][:vsfs.BlockSize]); err != nil {
		panic(err)
	}
	for i := range f.inodes {
		offset := vsfs.InodeOffset(i)
		if err := f.inodes[i].Encode(data[offset : offset+vsfs.InodeSize]); err != nil {
			panic(err)
		}
	}
	for i := 0; i < vsfs.DataBlockCount; i++ {
		data[int(vsfs.DataBlock(i))*vsfs.BlockSize] = byte(i + 1)
	}
	return data
}

func (f *fixture) image() *image.Image {
	return image.NewMemory("test.img", f.bytes())
}

// randomFixture returns a thoroughly inconsistent image.
func randomFixture(seed int64) *fixture {
	r := rand.New(rand.NewSource(seed))
	f := newFixture()

	f.superblock.Magic = uint16(r.Intn(0x10000))
	f.superblock.TotalBlocks = uint32(r.Intn(128))
	f.superblock.InodeCount = uint32(r.Intn(160))
	inodeBits, dataBits := make([]byte, vsfs.BlockSize), make([]byte, vsfs.BlockSize)
	r.Read(inodeBits[:16])
	r.Read(dataBits[:8])
	f.inodeBitmap = util.BitmapFromBytes(inodeBits)
	f.dataBitmap = util.BitmapFromBytes(dataBits)

	for i := range f.inodes {
		inode := &f.inodes[i]
		inode.LinksCount = uint32(r.Intn(3))
		if r.Intn(4) == 0 {
			inode.DTime = uint32(r.Intn(100) + 1)
		}
		switch r.Intn(6) {
		case 0:
			inode.DirectBlock = 0
		case 1:
			inode.DirectBlock = uint32(9000 + r.Intn(2000))
		default:
			inode.DirectBlock = uint32(r.Intn(vsfs.TotalBlocks))
		}
		inode.Indirect[0] = uint32(r.Intn(1000))
	}
	return f
}

// load reads back the persisted state of img into a fresh session.
func load(t *testing.T, img *image.Image) *Session {
	t.Helper()
	s := NewSession(img, false)
	if err := s.loadSuperblock(); err != nil {
		t.Fatal(err)
	}
	if err := s.loadBitmaps(); err != nil {
		t.Fatal(err)
	}
	if err := s.loadInodes(); err != nil {
		t.Fatal(err)
	}
	return s
}

func snapshot(t *testing.T, img *image.Image) []byte {
	t.Helper()
	data, err := img.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func mustRun(t *testing.T, img *image.Image, opts Options) *Report {
	t.Helper()
	report, err := Run(context.Background(), img, opts)
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func isSet(t *testing.T, bitmap *util.Bitmap, i int) bool {
	t.Helper()
	set, err := bitmap.IsSet(i)
	if err != nil {
		t.Fatal(err)
	}
	return set
}
