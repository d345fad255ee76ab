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
	"fmt"

	"github.com/minio/vsfsck/pkg/fsck"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
)

// WriteTextfile writes the metrics of report to path in the Prometheus text
// format, as read by the node exporter textfile collector.
func WriteTextfile(path string, report *fsck.Report) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(newReportCollector(report)); err != nil {
		return err
	}

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("unable to write metrics to %v; %w", path, err)
	}

	klog.V(3).Infof("Metrics written to %v", path)
	return nil
}
