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
	"time"
)

// Pass denotes a checker pass.
type Pass string

const (
	PassIO          Pass = "io"
	PassSuperblock  Pass = "superblock"
	PassDiagnostic  Pass = "diagnostic"
	PassInodeBitmap Pass = "inode-bitmap"
	PassDataBitmap  Pass = "data-bitmap"
	PassDuplicates  Pass = "duplicates"
	PassBadBlocks   Pass = "bad-blocks"
)

// Passes lists all passes in execution order.
var Passes = []Pass{
	PassIO,
	PassSuperblock,
	PassDiagnostic,
	PassInodeBitmap,
	PassDataBitmap,
	PassDuplicates,
	PassBadBlocks,
}

// Severity denotes the kind of a report entry.
type Severity string

const (
	// SeverityFix is a repair applied to the in-memory structures.
	SeverityFix Severity = "fix"

	// SeverityFinding is an inconsistency reported by the diagnostic pass.
	SeverityFinding Severity = "finding"

	// SeverityWarning is an inconsistency left unresolved.
	SeverityWarning Severity = "warning"
)

// Entry is one logged fix, finding or warning.
type Entry struct {
	Pass     Pass     `json:"pass"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report is the result of one checker run.
type Report struct {
	RunID           string    `json:"runID"`
	Image           string    `json:"image"`
	ImageSize       int64     `json:"imageSize"`
	DryRun          bool      `json:"dryRun"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DigestBefore    string    `json:"digestBefore,omitempty"`
	DigestAfter     string    `json:"digestAfter,omitempty"`
	DuplicatesFound bool      `json:"duplicatesFound"`
	BadBlocksFound  bool      `json:"badBlocksFound"`
	InodesInUse     int       `json:"inodesInUse"`
	BlocksInUse     int       `json:"blocksInUse"`
	Entries         []Entry   `json:"entries,omitempty"`
}

func (report *Report) add(pass Pass, severity Severity, message string) {
	report.Entries = append(report.Entries, Entry{Pass: pass, Severity: severity, Message: message})
}

// Count returns the number of entries of severity logged by pass.
func (report *Report) Count(pass Pass, severity Severity) (count int) {
	for _, entry := range report.Entries {
		if entry.Pass == pass && entry.Severity == severity {
			count++
		}
	}
	return count
}

func (report *Report) total(severity Severity) (count int) {
	for _, entry := range report.Entries {
		if entry.Severity == severity {
			count++
		}
	}
	return count
}

// Fixes returns the number of repairs applied.
func (report *Report) Fixes() int {
	return report.total(SeverityFix)
}

// Findings returns the number of inconsistencies reported by the diagnostic
// pass.
func (report *Report) Findings() int {
	return report.total(SeverityFinding)
}

// Warnings returns the number of unresolved inconsistencies.
func (report *Report) Warnings() int {
	return report.total(SeverityWarning)
}

// Changed returns whether the image content differs after the run.
func (report *Report) Changed() bool {
	return report.DigestBefore != report.DigestAfter
}

// Duration returns the run duration.
func (report *Report) Duration() time.Duration {
	return report.EndTime.Sub(report.StartTime)
}
