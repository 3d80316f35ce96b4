package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/picoprov/internal/agent"
	"github.com/muurk/picoprov/internal/config"
	"github.com/muurk/picoprov/internal/logging"
	"github.com/muurk/picoprov/internal/monitor"
	"github.com/muurk/picoprov/internal/radiosim"
)

// Agent command flags
var (
	configPath string
	networks   []string
	latencyMS  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Agent config file (default: OS config dir)")
	rootCmd.PersistentFlags().StringSliceVar(&networks, "network", nil,
		"Simulated joinable network as ssid:password (repeatable)")
	rootCmd.PersistentFlags().IntVar(&latencyMS, "join-latency", 0, "Simulated join latency in milliseconds")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(diagCmd)
}

// runCmd starts the agent headless
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent headless",
	Long: `Run the provisioning agent without a dashboard.

The agent joins the stored network if credentials exist, otherwise it opens
the configuration portal and waits for a submission. Runs until interrupted.`,
	Example: `  # Run with the default config
  picoprov-agent run

  # Run with a joinable simulated network
  picoprov-agent run --network HomeNet:secret123

  # Run with a specific config file
  picoprov-agent run --config ./agent.yaml`,
	RunE: runAgent,
}

// simulateCmd starts the agent with the interactive dashboard
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the agent with an interactive dashboard",
	Long: `Run the provisioning agent with a terminal dashboard.

The dashboard shows the connection state, LED indication, and stored
credentials, and provides key bindings to inject link loss, radio faults,
and reset-button presses into the simulated radio.`,
	Example: `  # Simulate a device with one joinable network
  picoprov-agent simulate --network HomeNet:secret123

  # Simulate a factory-fresh device (portal opens immediately)
  picoprov-agent simulate`,
	RunE: runSimulate,
}

// diagCmd prints a one-shot diagnostic dump
var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Print storage diagnostics and exit",
	Long: `Open the credential store, print its diagnostics, and exit.

Useful for checking what a device would do on its next boot without
actually starting the agent.`,
	RunE: runDiag,
}

// buildSimRadio constructs the simulated radio from the --network flags.
func buildSimRadio() (*radiosim.Radio, error) {
	radio := radiosim.NewRadio()
	for _, spec := range networks {
		parts := strings.SplitN(spec, ":", 2)
		if parts[0] == "" {
			return nil, fmt.Errorf("invalid --network %q (want ssid:password)", spec)
		}
		password := ""
		if len(parts) == 2 {
			password = parts[1]
		}
		radio.AddNetwork(parts[0], password, 0)
	}
	if latencyMS > 0 {
		radio.SetLatency(time.Duration(latencyMS) * time.Millisecond)
	}
	return radio, nil
}

func loadAgentConfig() (*config.AgentConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadAgentConfig()
	if err != nil {
		return err
	}
	defer logging.Sync()

	radio, err := buildSimRadio()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	button := radiosim.NewButton()
	restarter := radiosim.NewRestarter(stop) // factory reset ends the process

	a, err := agent.New(agent.Options{
		Config:    cfg,
		Radio:     radio,
		Button:    button,
		Restarter: restarter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Agent running as %q. Press Ctrl+C to stop.\n", cfg.Device.Name)
	return a.Run(ctx)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadAgentConfig()
	if err != nil {
		return err
	}
	defer logging.Sync()

	radio, err := buildSimRadio()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	button := radiosim.NewButton()
	restarter := radiosim.NewRestarter(nil) // dashboard shows the reset; keep running

	a, err := agent.New(agent.Options{
		Config:    cfg,
		Radio:     radio,
		Button:    button,
		Restarter: restarter,
	})
	if err != nil {
		return err
	}

	agentDone := make(chan error, 1)
	go func() { agentDone <- a.Run(ctx) }()

	if err := monitor.Run(a, radio, button); err != nil {
		cancel()
		<-agentDone
		return err
	}

	cancel()
	return <-agentDone
}

func runDiag(cmd *cobra.Command, args []string) error {
	cfg, err := loadAgentConfig()
	if err != nil {
		return err
	}
	defer logging.Sync()

	radio, err := buildSimRadio()
	if err != nil {
		return err
	}

	a, err := agent.New(agent.Options{Config: cfg, Radio: radio})
	if err != nil {
		return err
	}

	if err := a.Vault().Open(); err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	fmt.Print(a.Vault().Store().Diagnostics())
	if creds, found := a.Vault().LoadWiFiCredentials(); found {
		fmt.Printf("Stored network: %s\n", creds.SSID)
	} else {
		fmt.Println("Stored network: none (next boot opens the portal)")
	}
	return nil
}
