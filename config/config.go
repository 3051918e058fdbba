// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the Xbit node configuration file, a plain
// "key = value" text file stored in the data directory.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the settings of an Xbit deployment.
type Config struct {
	DataDir     string // holds the config file and the request database
	Network     string // "mainnet", "testnet" or "regtest"
	RPCURL      string // empty: the network preset
	MetricsAddr string // empty: metrics disabled
	LogLevel    string
	LogFile     string // empty: stderr

	UnitPrice      string // USDT per ticket, decimal
	RevealDelay    uint64 // blocks between commit and reveal
	WithdrawFeePPM uint32 // withdrawal fee kept in the pool, parts per million
}

const configFileName = "config"

// DefaultDataDir returns ~/.xbit, or .xbit when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xbit"
	}
	return filepath.Join(home, ".xbit")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// DefaultConfig returns the configuration of a local regtest deployment.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		Network:     "regtest",
		MetricsAddr: ":9090",
		LogLevel:    "info",
		UnitPrice:   "10",
		RevealDelay: 3,
	}
}

// LoadConfig reads path on top of DefaultConfig. Blank lines and lines
// starting with '#' are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return Config{}, fmt.Errorf("%w: line %d: %q", err, lineNum, line)
		}
		if err := cfg.set(key, value); err != nil {
			return Config{}, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "rpcurl":
		c.RPCURL = value
	case "metrics":
		c.MetricsAddr = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "unitprice":
		c.UnitPrice = value
	case "revealdelay":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("revealdelay: %w", err)
		}
		c.RevealDelay = n
	case "withdrawfee":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("withdrawfee: %w", err)
		}
		c.WithdrawFeePPM = uint32(n)
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Xbit Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "rpcurl = %s\n", cfg.RPCURL)
	fmt.Fprintf(&b, "metrics = %s\n", cfg.MetricsAddr)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Lottery\n")
	fmt.Fprintf(&b, "unitprice = %s\n", cfg.UnitPrice)
	fmt.Fprintf(&b, "revealdelay = %d\n", cfg.RevealDelay)
	fmt.Fprintf(&b, "withdrawfee = %d\n", cfg.WithdrawFeePPM)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
