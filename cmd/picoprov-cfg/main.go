// Picoprov-cfg is a provisioning utility for PicoProv devices.
//
// It discovers devices in setup mode over mDNS, submits WiFi credentials to
// a device's configuration portal, watches the portal's live status feed,
// and inspects or wipes a local credential store file.
//
// Usage:
//
//	picoprov-cfg [command] [flags]
//
// See 'picoprov-cfg --help' for available commands.
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
	Use:   "picoprov-cfg",
	Short: "PicoProv Device Provisioning Utility",
	Long: `A utility for provisioning PicoProv devices.

Discovers devices in setup mode, submits WiFi credentials to a device's
configuration portal, and inspects local credential stores.`,
	Version: version.Version,
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
		fmt.Printf("picoprov-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
