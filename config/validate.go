package config

import (
	"fmt"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.Validation.Concurrency < 0 {
		return fmt.Errorf("validation.concurrency must be >= 0")
	}
	return nil
}
