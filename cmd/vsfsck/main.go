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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/minio/vsfsck/pkg/consts"
	"github.com/minio/vsfsck/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// Version of this application populated by the build.
var Version string

var (
	imagePath    = consts.DefaultImage // --image flag
	dryRunFlag   bool                  // --dry-run flag
	outputFormat string                // --output flag
	metricsFile  string                // --metrics-file flag
	auditFlag    bool                  // --audit flag
	quietFlag    bool                  // --quiet flag
)

var mainCmd = &cobra.Command{
	Use:   consts.AppName,
	Short: "Check and repair the metadata of a " + consts.AppPrettyName + " image.",
	Long: `Check and repair the metadata of a VSFS image in place.

The superblock is validated, the inode and data bitmaps are reconciled with the
inode table, orphan data blocks are assigned to free inodes, and duplicate and
out of range block references are cleared. Every repair is logged to standard
output.`,
	Example: strings.ReplaceAll(
		`1. Check and repair vsfs.img in the current directory
   $ {APP_NAME}

2. Show what would be repaired without writing to the image
   $ {APP_NAME} --image /tmp/test.img --dry-run

3. Print the run report as JSON and export metrics
   $ {APP_NAME} -o json --metrics-file /var/lib/node_exporter/{APP_NAME}.prom`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setLogOutput(viper.GetString("output"))
	},
	RunE: func(c *cobra.Command, _ []string) error {
		return checkMain(c.Context(), c.OutOrStdout())
	},
}

// setLogOutput sends the diagnostic log to standard output, or to standard
// error when standard output carries a formatted report.
func setLogOutput(format string) error {
	switch format {
	case "":
		klog.SetOutput(os.Stdout)
	case "json", "yaml":
		klog.SetOutput(os.Stderr)
	default:
		return fmt.Errorf("unknown output format %v; Check `--help` for usage", format)
	}
	return nil
}

func init() {
	if mainCmd.Version == "" {
		mainCmd.Version = "0.0.0-dev"
	}

	viper.SetEnvPrefix(consts.AppCapsName)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	kflags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(kflags)
	mainCmd.PersistentFlags().AddGoFlagSet(kflags)

	// klog writes every line exactly once through SetOutput
	kflags.Set("logtostderr", "false")
	kflags.Set("alsologtostderr", "false")
	kflags.Set("one_output", "true")
	kflags.Set("stderrthreshold", "FATAL")

	mainCmd.Flags().StringVar(&imagePath, "image", imagePath, "Path to the "+consts.AppPrettyName+" image")
	mainCmd.Flags().BoolVar(&dryRunFlag, "dry-run", dryRunFlag, "Repair in memory only and write nothing to the image")
	mainCmd.Flags().StringVarP(&outputFormat, "output", "o", outputFormat, "Print the run report in the given format; one of 'json|yaml'")
	mainCmd.Flags().StringVar(&metricsFile, "metrics-file", metricsFile, "Write Prometheus metrics of the run to this file")
	mainCmd.Flags().BoolVar(&auditFlag, "audit", auditFlag, "Save the run report under ~/."+consts.AppName+"/"+consts.AuditDir)
	mainCmd.Flags().BoolVar(&quietFlag, "quiet", quietFlag, "Suppress printing error messages and the summary")

	mainCmd.PersistentFlags().MarkHidden("alsologtostderr")
	mainCmd.PersistentFlags().MarkHidden("add_dir_header")
	mainCmd.PersistentFlags().MarkHidden("log_file")
	mainCmd.PersistentFlags().MarkHidden("log_file_max_size")
	mainCmd.PersistentFlags().MarkHidden("one_output")
	mainCmd.PersistentFlags().MarkHidden("skip_headers")
	mainCmd.PersistentFlags().MarkHidden("skip_log_headers")
	mainCmd.PersistentFlags().MarkHidden("log_backtrace_at")
	mainCmd.PersistentFlags().MarkHidden("log_dir")
	mainCmd.PersistentFlags().MarkHidden("logtostderr")
	mainCmd.PersistentFlags().MarkHidden("stderrthreshold")
	mainCmd.PersistentFlags().MarkHidden("vmodule")

	viper.BindPFlags(mainCmd.Flags())
}

func main() {
	defer klog.Flush()

	ctx, cancelFunc := context.WithCancel(context.Background())

	// We must use a buffered channel or risk missing the signal
	// if we're not ready to receive when the signal is sent.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case signal := <-signalCh:
			utils.Eprintf(viper.GetBool("quiet"), false, "\nExiting on signal %v\n", signal)
			cancelFunc()
			klog.Flush()
			os.Exit(1)
		case <-ctx.Done():
		}
	}()

	if err := mainCmd.ExecuteContext(ctx); err != nil {
		klog.Flush()
		utils.Eprintf(viper.GetBool("quiet"), true, "%v\n", err)
		cancelFunc()
		os.Exit(1)
	}
	cancelFunc()
}
