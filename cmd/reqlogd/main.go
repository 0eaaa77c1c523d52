// Package main implements reqlogd, a demo server and tooling for the reqlog
// access-log middleware.
//
// Usage:
//
//	# Serve the demo API with defaults
//	reqlogd serve
//
//	# Configure via file and environment
//	REQLOGD_SERVER_PORT=9090 reqlogd serve --config reqlogd.yaml
//
//	# Render a template against recorded metadata
//	echo '{"method":"GET","url":"/"}' | reqlogd render --format ":method :url" -
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reqlogd",
		Short: "Demo server and tooling for the reqlog access-log middleware",
		Long: `reqlogd serves a small echo API with every request logged through reqlog,
and renders access-log templates offline.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reqlogd %s (commit %s)\n", version, gitCommit)
		},
	})

	return root
}
