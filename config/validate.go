// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxRevealDelay is the largest accepted reveal delay, the block-hash
// lookback of an EVM node.
const MaxRevealDelay = 256

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if cfg.RPCURL != "" {
		u, err := url.Parse(cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRPCURL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidRPCURL, cfg.RPCURL)
		}
	}

	// An empty metrics address disables the endpoint.
	if cfg.MetricsAddr != "" {
		if err := validateAddr(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMetricsAddr, err)
		}
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	price, err := decimal.NewFromString(cfg.UnitPrice)
	if err != nil || !price.IsPositive() {
		return fmt.Errorf("%w: %q", ErrInvalidUnitPrice, cfg.UnitPrice)
	}

	if cfg.RevealDelay == 0 || cfg.RevealDelay > MaxRevealDelay {
		return fmt.Errorf("%w: %d", ErrInvalidRevealDelay, cfg.RevealDelay)
	}

	if cfg.WithdrawFeePPM > 1_000_000 {
		return fmt.Errorf("%w: %d", ErrInvalidWithdrawFee, cfg.WithdrawFeePPM)
	}

	return nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
