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

package utils

import (
	"bytes"
	"testing"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		format    string
		obj       interface{}
		expected  string
		expectErr bool
	}{
		{"json", sample{Name: "a", Count: 2}, "{\n  \"name\": \"a\",\n  \"count\": 2\n}\n", false},
		{"json", sample{Name: "a"}, "{\n  \"name\": \"a\"\n}\n", false},
		{"yaml", sample{Name: "a", Count: 2}, "count: 2\nname: a\n\n", false},
		{"xml", sample{Name: "a"}, "", true},
		{"json", make(chan int), "", true},
	}

	for i, testCase := range testCases {
		var buf bytes.Buffer
		err := Format(&buf, testCase.format, testCase.obj)
		if testCase.expectErr {
			if err == nil {
				t.Fatalf("case %v: expected error", i+1)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %v: unexpected error %v", i+1, err)
		}
		if buf.String() != testCase.expected {
			t.Fatalf("case %v: expected: %q, got: %q", i+1, testCase.expected, buf.String())
		}
	}
}
