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

package metrics

import (
	"github.com/minio/vsfsck/pkg/consts"
	"github.com/minio/vsfsck/pkg/fsck"
	"github.com/prometheus/client_golang/prometheus"
)

type reportCollector struct {
	report *fsck.Report

	fixes      *prometheus.Desc
	findings   *prometheus.Desc
	warnings   *prometheus.Desc
	changed    *prometheus.Desc
	duplicates *prometheus.Desc
	badBlocks  *prometheus.Desc
	imageSize  *prometheus.Desc
	duration   *prometheus.Desc
}

func newDesc(name, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(consts.AppName, "repair", name),
		help,
		append([]string{"image"}, labels...), nil,
	)
}

func newReportCollector(report *fsck.Report) *reportCollector {
	return &reportCollector{
		report:     report,
		fixes:      newDesc("fixes", "Number of repairs applied by the pass", "pass"),
		findings:   newDesc("findings", "Number of inconsistencies reported by the diagnostic pass", "pass"),
		warnings:   newDesc("warnings", "Number of inconsistencies left unresolved by the pass", "pass"),
		changed:    newDesc("image_changed", "Whether the image content changed during the run"),
		duplicates: newDesc("duplicates_found", "Whether duplicate block references were found"),
		badBlocks:  newDesc("bad_blocks_found", "Whether out of range block references were found"),
		imageSize:  newDesc("image_size_bytes", "Size of the image in bytes"),
		duration:   newDesc("run_duration_seconds", "Duration of the run"),
	}
}

// Describe sends the super set of all possible descriptors of metrics
func (c *reportCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fixes
	ch <- c.findings
	ch <- c.warnings
	ch <- c.changed
	ch <- c.duplicates
	ch <- c.badBlocks
	ch <- c.imageSize
	ch <- c.duration
}

func toGauge(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

// Collect is called by Prometheus registry when collecting metrics.
func (c *reportCollector) Collect(ch chan<- prometheus.Metric) {
	image := c.report.Image

	for _, pass := range fsck.Passes {
		ch <- prometheus.MustNewConstMetric(c.fixes, prometheus.GaugeValue,
			float64(c.report.Count(pass, fsck.SeverityFix)), image, string(pass))
		ch <- prometheus.MustNewConstMetric(c.findings, prometheus.GaugeValue,
			float64(c.report.Count(pass, fsck.SeverityFinding)), image, string(pass))
		ch <- prometheus.MustNewConstMetric(c.warnings, prometheus.GaugeValue,
			float64(c.report.Count(pass, fsck.SeverityWarning)), image, string(pass))
	}

	ch <- prometheus.MustNewConstMetric(c.changed, prometheus.GaugeValue, toGauge(c.report.Changed()), image)
	ch <- prometheus.MustNewConstMetric(c.duplicates, prometheus.GaugeValue, toGauge(c.report.DuplicatesFound), image)
	ch <- prometheus.MustNewConstMetric(c.badBlocks, prometheus.GaugeValue, toGauge(c.report.BadBlocksFound), image)
	ch <- prometheus.MustNewConstMetric(c.imageSize, prometheus.GaugeValue, float64(c.report.ImageSize), image)
	ch <- prometheus.MustNewConstMetric(c.duration, prometheus.GaugeValue, c.report.Duration().Seconds(), image)
}
