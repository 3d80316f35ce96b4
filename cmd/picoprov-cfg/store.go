package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/picoprov/internal/config"
	"github.com/muurk/picoprov/internal/storage"
)

// Store command flags
var storePath string

// storeCmd groups local credential store operations
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or wipe a local credential store",
	Long: `Operate on a credential store file directly.

These commands work on the binary store a host-side agent uses, without
going through the agent. They are mainly useful for debugging what a
device would do on its next boot.`,
}

func init() {
	storeCmd.PersistentFlags().StringVar(&storePath, "path", "", "Store file path (default: the agent's default store)")

	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeVerifyCmd)
	storeCmd.AddCommand(storeWipeCmd)
}

var storeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the store contents",
	RunE:  runStoreShow,
}

var storeVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the store's integrity",
	Long: `Check the store's magic number, version, and checksum.

Exits with an error when the record is corrupted. A corrupted store is not
fatal for the device: it falls back to defaults and opens the portal on the
next boot. With --repair, a corrupted record is rewritten with defaults
immediately instead.`,
	RunE: runStoreVerify,
}

var repairFlag bool

func init() {
	storeVerifyCmd.Flags().BoolVar(&repairFlag, "repair", false, "Rewrite a corrupted record with defaults")
}

var storeWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Reset the store to factory defaults",
	RunE:  runStoreWipe,
}

func init() {
	storeWipeCmd.Flags().BoolVar(&yesFlag, "yes", false, "Skip the confirmation prompt")
}

func resolveStorePath() (string, error) {
	if storePath != "" {
		return storePath, nil
	}
	return config.DefaultStoragePath()
}

func openStore() (*storage.Vault, error) {
	path, err := resolveStorePath()
	if err != nil {
		return nil, err
	}

	vault := storage.NewVault(storage.NewStore(storage.NewFileBackend(path, 0)))
	if err := vault.Open(); err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	return vault, nil
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	vault, err := openStore()
	if err != nil {
		return err
	}

	fmt.Print(vault.Store().Diagnostics())

	if creds, found := vault.LoadWiFiCredentials(); found {
		fmt.Printf("Network:  %s (password stored, not shown)\n", creds.SSID)
	} else {
		fmt.Println("Network:  none")
	}

	devCfg, _ := vault.LoadDeviceConfig()
	fmt.Printf("Hostname: %s\n", devCfg.Hostname)
	fmt.Printf("Auto-reconnect: %v (max %d attempts, %ds timeout)\n",
		devCfg.AutoReconnect, devCfg.MaxReconnectAttempts, devCfg.ConnectTimeout)

	if netCfg, found := vault.LoadNetworkConfig(); found && netCfg.UseStaticIP {
		fmt.Println("Addressing: static IP configured")
	} else {
		fmt.Println("Addressing: DHCP")
	}
	return nil
}

func runStoreVerify(cmd *cobra.Command, args []string) error {
	// Inspect the raw bytes directly: opening the store would silently
	// replace a corrupted record with defaults.
	path, err := resolveStorePath()
	if err != nil {
		return err
	}

	raw, err := storage.NewFileBackend(path, 0).Load()
	if err != nil {
		return fmt.Errorf("failed to read store at %s: %w", path, err)
	}
	if len(raw) == 0 {
		fmt.Println("Store is empty (fresh medium); nothing to verify.")
		return nil
	}

	rec, parseErr := storage.UnmarshalRecord(raw)
	if parseErr == nil && storage.Validate(rec) {
		fmt.Printf("Store integrity OK (checksum 0x%08X)\n", rec.Checksum)
		return nil
	}

	if !repairFlag {
		return fmt.Errorf("store integrity check FAILED (use --repair to reset to defaults)")
	}

	vault, err := openStore() // opening repairs the record
	if err != nil {
		return err
	}
	fmt.Printf("Store was corrupted and has been reset to defaults (checksum 0x%08X).\n",
		vault.Store().Checksum())
	return nil
}

func runStoreWipe(cmd *cobra.Command, args []string) error {
	if !yesFlag {
		fmt.Print("This erases all stored credentials and configuration. Continue? [y/N]: ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	vault, err := openStore()
	if err != nil {
		return err
	}

	if err := vault.ClearAll(); err != nil {
		return fmt.Errorf("failed to wipe store: %w", err)
	}

	fmt.Println("Store reset to factory defaults.")
	return nil
}
