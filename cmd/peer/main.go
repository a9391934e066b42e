// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "waymark-peer",
		Short: "Headless Waymark map client",
		Long: `waymark-peer joins a Waymark relay like a browser would.

It names itself, streams a simulated or replayed position, and prints
every other peer's join, move and leave as it happens. Useful for demos,
load checks and watching a map from a terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		runCmd(),
		versionCmd(),
	)
	return root
}
