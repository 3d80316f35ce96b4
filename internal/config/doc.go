// Package config provides agent configuration management for the PicoProv project.
//
// This package manages a YAML-based configuration file that controls the setup
// portal identity and transport: the setup access point name, the HTTP listen
// address, the portal timeout, and the location of the binary credential store.
// The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/picoprov/agent.yaml or $HOME/.config/picoprov/agent.yaml
//   - macOS: $HOME/.config/picoprov/agent.yaml
//   - Windows: %LOCALAPPDATA%\picoprov\agent.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores the provisioned WiFi network credentials.
// Those live exclusively in the binary credential store managed by the storage
// package; this file only points at it.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg.Portal.TimeoutSeconds = 600
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// A missing file is not an error: Load returns the defaults, so a freshly
// installed agent runs without any setup step.
package config
