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
	"os"
	"path/filepath"
	"testing"
)

func TestSafeFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "audit.json")
	if err := os.WriteFile(filename, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	safeFile, err := NewSafeFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := safeFile.Write([]byte("new")); err != nil {
		t.Fatal(err)
	}

	// target is untouched until close
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old" {
		t.Fatalf("expected: old, got: %v", string(data))
	}

	if err := safeFile.Close(); err != nil {
		t.Fatal(err)
	}
	if data, err = os.ReadFile(filename); err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Fatalf("expected: new, got: %v", string(data))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, got: %v entries", len(entries))
	}
}

func TestSafeFileMissingDir(t *testing.T) {
	if _, err := NewSafeFile(filepath.Join(t.TempDir(), "missing", "audit.json")); err == nil {
		t.Fatalf("expected error")
	}
}
