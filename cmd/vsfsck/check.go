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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/minio/vsfsck/pkg/consts"
	"github.com/minio/vsfsck/pkg/fsck"
	"github.com/minio/vsfsck/pkg/metrics"
	"github.com/minio/vsfsck/pkg/utils"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

func checkMain(ctx context.Context, w io.Writer) error {
	report, err := fsck.Check(ctx, viper.GetString("image"), fsck.Options{DryRun: viper.GetBool("dry-run")})
	klog.Flush()
	if report == nil {
		return err
	}

	if format := viper.GetString("output"); format != "" {
		err = multierr.Append(err, utils.Format(w, format, report))
	} else if !viper.GetBool("quiet") {
		printSummary(w, report)
	}

	if metricsFile := viper.GetString("metrics-file"); metricsFile != "" {
		err = multierr.Append(err, metrics.WriteTextfile(metricsFile, report))
	}

	if viper.GetBool("audit") {
		auditFile, auditErr := writeAuditFile(report)
		if auditErr != nil {
			klog.ErrorS(auditErr, "unable to write audit file")
			utils.Eprintf(viper.GetBool("quiet"), false, "%v\n", color.HiYellowString("Skipping audit logging"))
		} else {
			klog.V(1).Infof("Run report saved to %v", auditFile)
		}
	}

	return err
}

func status(report *fsck.Report) string {
	switch {
	case report.Warnings() > 0:
		return color.HiRedString("%v unresolved", report.Warnings())
	case report.DryRun && report.Fixes() > 0:
		return color.HiYellowString("needs repair")
	case report.Changed():
		return color.HiYellowString("repaired")
	default:
		return color.HiGreenString("clean")
	}
}

func printSummary(w io.Writer, report *fsck.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"PASS", "FIXES", "FINDINGS", "WARNINGS"})
	for _, pass := range fsck.Passes {
		t.AppendRow(table.Row{
			string(pass),
			report.Count(pass, fsck.SeverityFix),
			report.Count(pass, fsck.SeverityFinding),
			report.Count(pass, fsck.SeverityWarning),
		})
	}
	t.AppendFooter(table.Row{"TOTAL", report.Fixes(), report.Findings(), report.Warnings()})

	text.DisableColors()
	style := table.StyleColoredDark
	style.Color.IndexColumn = text.Colors{text.FgHiBlue, text.BgHiBlack}
	style.Color.Header = text.Colors{text.FgHiBlue, text.BgHiBlack}
	t.SetStyle(style)
	t.Render()

	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "\n%v%v: %v, %v in %v\n",
		report.Image,
		mode,
		humanize.IBytes(uint64(report.ImageSize)),
		status(report),
		report.Duration().Round(time.Millisecond),
	)
}

func getDefaultAuditDir() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return path.Join(homeDir, consts.AppConfigDir, consts.AuditDir), nil
}

func openAuditFile(auditFile string) (*utils.SafeFile, error) {
	defaultAuditDir, err := getDefaultAuditDir()
	if err != nil {
		return nil, fmt.Errorf("unable to get default audit directory; %w", err)
	}
	if err := os.MkdirAll(defaultAuditDir, 0o700); err != nil {
		return nil, fmt.Errorf("unable to create default audit directory; %w", err)
	}
	return utils.NewSafeFile(path.Join(defaultAuditDir, auditFile))
}

// writeAuditFile saves report as JSON and returns the file name.
func writeAuditFile(report *fsck.Report) (string, error) {
	data, err := utils.ToJSON(report)
	if err != nil {
		return "", err
	}

	file, err := openAuditFile(fmt.Sprintf("%v.%v.json", filepath.Base(report.Image), report.RunID))
	if err != nil {
		return "", err
	}
	if _, err = fmt.Fprintln(file, data); err != nil {
		return "", multierr.Append(err, file.Close())
	}
	if err = file.Close(); err != nil {
		return "", fmt.Errorf("unable to close audit file; %w", err)
	}
	return file.Name(), nil
}
