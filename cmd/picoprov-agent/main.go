// Picoprov-agent runs the device-side WiFi provisioning agent.
//
// On startup the agent joins the stored network if credentials exist,
// otherwise it opens a configuration portal (HTTP + mDNS) and waits for
// credentials. On a development host the WiFi radio is simulated; the
// simulate command adds an interactive dashboard for injecting link loss,
// radio faults, and button presses.
//
// Usage:
//
//	picoprov-agent [command] [flags]
//
// Running without arguments starts the agent headless.
// See 'picoprov-agent --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/picoprov/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "picoprov-agent",
	Short: "PicoProv WiFi Provisioning Agent",
	Long: `The device-side WiFi provisioning agent.

Joins the stored network on startup, or opens a configuration portal
when no credentials exist. Credentials submitted through the portal are
verified against the radio before being persisted.

If no command is specified, the agent runs headless.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("picoprov-agent %s (commit: %s)\n", version.Version, version.Commit)
	},
}
