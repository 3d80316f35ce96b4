package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/picoprov/internal/discovery"
	"github.com/muurk/picoprov/internal/storage"
)

// Provisioning command flags
var (
	deviceAddr  string
	scanTimeout int
	ssidFlag    string
	yesFlag     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceAddr, "device", "", "Device address as host:port (skips discovery)")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(storeCmd)
}

// discoverCmd finds devices in setup mode on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover PicoProv devices in setup mode",
	Long: `Discover PicoProv devices using mDNS/DNS-SD.

Devices in setup mode advertise a "_picoprov-setup._tcp" service. This
command listens for those advertisements and lists the devices it hears
from, with the portal address to use for provisioning.`,
	Example: `  # Scan for 10 seconds (default)
  picoprov-cfg discover

  # Quick 3-second scan
  picoprov-cfg discover --timeout 3

  # Find devices that are already provisioned and connected
  picoprov-cfg discover --connected`,
	RunE: runDiscover,
}

var discoverConnected bool

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
	discoverCmd.Flags().BoolVar(&discoverConnected, "connected", false, "Scan for connected devices instead of setup mode")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	mode := "setup mode"
	scan := discovery.ScanForDevices
	if discoverConnected {
		mode = "connected"
		scan = discovery.ScanForConnectedDevices
	}

	fmt.Printf("Scanning for PicoProv devices (%s, timeout: %ds)...\n\n", mode, scanTimeout)

	devices, err := scan(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the device is powered on and its portal is active")
		fmt.Println("  - Verify your computer is connected to the device's setup WiFi")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --device host:port to skip discovery")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))

	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device.Instance)
		fmt.Printf("   Hostname: %s\n", device.Hostname)
		fmt.Printf("   Portal:   %s\n", device.BaseURL())
		if v := device.GetMetadata("version"); v != "" {
			fmt.Printf("   Version:  %s\n", v)
		}
		fmt.Println()
	}

	fmt.Println("Use 'picoprov-cfg provision --device <host:port> --ssid <network>' to provision")
	return nil
}

// provisionCmd submits WiFi credentials to a device's portal
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Submit WiFi credentials to a device",
	Long: `Submit WiFi credentials to a device's configuration portal.

The password is prompted interactively and never echoed. The device tries
the credentials against its radio before persisting them: a success response
means the device is connected and the setup portal has shut down.`,
	Example: `  # Provision a discovered device
  picoprov-cfg provision --device 192.168.4.1:8080 --ssid HomeNet`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&ssidFlag, "ssid", "", "Network SSID to provision (required)")
	_ = provisionCmd.MarkFlagRequired("ssid")
}

func runProvision(cmd *cobra.Command, args []string) error {
	addr, err := requireDevice()
	if err != nil {
		return err
	}
	if err := storage.ValidateSSID(ssidFlag); err != nil {
		return err
	}

	fmt.Printf("Password for %q (empty for an open network): ", ssidFlag)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := storage.ValidatePassword(string(password)); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"ssid":     ssidFlag,
		"password": string(password),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Submitting credentials to %s...\n", addr)

	// The device verifies the join synchronously; allow for the full
	// connect timeout before giving up.
	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Post("http://"+addr+"/connect", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode == http.StatusOK {
		fmt.Println("Device connected. The setup portal has shut down.")
		return nil
	}
	if msg := result["error"]; msg != "" {
		return fmt.Errorf("device rejected credentials: %s", msg)
	}
	return fmt.Errorf("device returned status %d", resp.StatusCode)
}

// infoCmd fetches device info from the portal
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device info",
	Long:  `Fetch and display the device info exposed by the configuration portal.`,
	Example: `  picoprov-cfg info --device 192.168.4.1:8080`,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	addr, err := requireDevice()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get("http://" + addr + "/info")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var info struct {
		Name              string `json:"name"`
		Hostname          string `json:"hostname"`
		Version           string `json:"version"`
		Status            string `json:"status"`
		UptimeSeconds     int64  `json:"uptime_seconds"`
		ReconnectAttempts int    `json:"reconnect_attempts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode device info: %w", err)
	}

	fmt.Printf("Device:   %s\n", info.Name)
	fmt.Printf("Hostname: %s\n", info.Hostname)
	fmt.Printf("Version:  %s\n", info.Version)
	fmt.Printf("Status:   %s\n", info.Status)
	fmt.Printf("Uptime:   %s\n", (time.Duration(info.UptimeSeconds) * time.Second).String())
	fmt.Printf("Attempts: %d\n", info.ReconnectAttempts)
	return nil
}

// resetCmd factory resets a device through its portal
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Factory reset a device",
	Long: `Factory reset a device through its configuration portal.

This clears all stored credentials and configuration on the device and
restarts it. The action cannot be undone.`,
	Example: `  picoprov-cfg reset --device 192.168.4.1:8080 --yes`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&yesFlag, "yes", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	addr, err := requireDevice()
	if err != nil {
		return err
	}

	if !yesFlag {
		fmt.Print("This clears all stored credentials on the device. Continue? [y/N]: ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post("http://"+addr+"/reset", "application/json", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("device returned status %d", resp.StatusCode)
	}

	fmt.Println("Factory reset accepted. The device is restarting.")
	return nil
}

// watchCmd streams the portal's live status feed
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a device's live status feed",
	Long: `Connect to the portal's WebSocket status feed and print every event.

Useful while provisioning: the feed shows the device move through
Connecting into Connected (or back into config mode on failure).`,
	Example: `  picoprov-cfg watch --device 192.168.4.1:8080`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	addr, err := requireDevice()
	if err != nil {
		return err
	}

	url := "ws://" + addr + "/ws"
	fmt.Printf("Connecting to %s (Ctrl+C to stop)...\n", url)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer ws.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		_ = ws.Close()
	}()

	for {
		var event struct {
			Type string `json:"type"`
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := ws.ReadJSON(&event); err != nil {
			fmt.Println("Feed closed.")
			return nil
		}

		ts := time.Now().Format("15:04:05")
		switch event.Type {
		case "status":
			fmt.Printf("%s  %s -> %s\n", ts, event.From, event.To)
		default:
			fmt.Printf("%s  %s\n", ts, event.Type)
		}
	}
}

func requireDevice() (string, error) {
	if deviceAddr == "" {
		return "", fmt.Errorf("no device specified: use --device host:port (try 'picoprov-cfg discover')")
	}
	return deviceAddr, nil
}
