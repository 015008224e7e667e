// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Protocol rules: Defined in genesis, immutable, must match across all nodes
//   - Node settings: Runtime configuration, can vary per node
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Node Configuration (runtime, per-node settings)
// =============================================================================

// Config holds node-specific runtime configuration.
// These settings can vary between nodes without breaking consensus.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Block-body validation (operational knobs, not consensus rules)
	Validation ValidationConfig

	// Logging
	Log LogConfig
}

// ValidationConfig holds block-body validator operational settings. Both
// fields are node-local knobs, not consensus rules: a node that bypasses
// range proofs or runs a different worker count still enforces the same
// balance equations (§8's invariant 7: accept/reject is concurrency-invariant).
type ValidationConfig struct {
	// BypassRangeProof skips Bulletproof verification entirely. Operator
	// controlled; must never be enabled against real value. Logged at Warn
	// level whenever the body validator is constructed with it set.
	BypassRangeProof bool `conf:"validation.bypass_range_proof"`
	// Concurrency is the number of worker goroutines OutputValidator shards
	// across. 0 or negative is treated as 1.
	Concurrency int `conf:"validation.concurrency"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.mimblecore
//	macOS:   ~/Library/Application Support/Mimblecore
//	Windows: %APPDATA%\Mimblecore
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mimblecore"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Mimblecore")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Mimblecore")
		}
		return filepath.Join(home, "AppData", "Roaming", "Mimblecore")
	default:
		return filepath.Join(home, ".mimblecore")
	}
}

// ChainDataDir returns the chain-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "mimblecore.conf")
}
