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
	"fmt"

	"github.com/diskfs/go-diskfs/util"
)

// NewBitmap returns an empty one-block allocation bitmap. Bit i is bit i%8 of
// byte i/8.
func NewBitmap() *util.Bitmap {
	return util.NewBitmap(BlockSize)
}

// DecodeBitmap returns a bitmap over a copy of the block b.
func DecodeBitmap(b []byte) (*util.Bitmap, error) {
	if len(b) != BlockSize {
		return nil, fmt.Errorf("decoding bitmap: %w; wanted %v, found %v", ErrBufferSize, BlockSize, len(b))
	}
	buf := make([]byte, BlockSize)
	copy(buf, b)
	return util.BitmapFromBytes(buf), nil
}

// EncodeBitmap encodes bitmap into b, which must be BlockSize long.
func EncodeBitmap(bitmap *util.Bitmap, b []byte) error {
	if len(b) != BlockSize {
		return fmt.Errorf("encoding bitmap: %w; wanted %v, found %v", ErrBufferSize, BlockSize, len(b))
	}
	data := bitmap.ToBytes()
	if len(data) != BlockSize {
		return fmt.Errorf("encoding bitmap: %w; wanted %v, found %v", ErrBufferSize, BlockSize, len(data))
	}
	copy(b, data)
	return nil
}

// CountBits returns the number of set bits among the first n bits.
func CountBits(bitmap *util.Bitmap, n int) (count int, err error) {
	for i := 0; i < n; i++ {
		set, err := bitmap.IsSet(i)
		if err != nil {
			return 0, fmt.Errorf("unable to test bit %v; %w", i, err)
		}
		if set {
			count++
		}
	}
	return count, nil
}
