package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/lott3ry/libxbit-go/config"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	defaults := config.DefaultConfig()
	dataDir := fs.String("datadir", defaults.DataDir, "data directory to initialize")
	netName := fs.String("network", defaults.Network, "network name (mainnet, testnet, regtest)")
	rpcURL := fs.String("rpc-url", "", "node JSON-RPC URL (default: network preset)")
	metricsAddr := fs.String("metrics", defaults.MetricsAddr, "Prometheus listen address, empty to disable")
	logLevel := fs.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "append logs to this file instead of stderr")
	unitPrice := fs.String("unit-price", defaults.UnitPrice, "ticket price in USDT")
	revealDelay := fs.Uint64("reveal-delay", defaults.RevealDelay, "blocks between a commit and its reveal")
	withdrawFee := fs.Uint32("withdraw-fee", 0, "withdrawal fee kept in the pool, parts per million")
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Config{
		DataDir:        *dataDir,
		Network:        *netName,
		RPCURL:         *rpcURL,
		MetricsAddr:    *metricsAddr,
		LogLevel:       *logLevel,
		LogFile:        *logFile,
		UnitPrice:      *unitPrice,
		RevealDelay:    *revealDelay,
		WithdrawFeePPM: *withdrawFee,
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	path := config.ConfigPath(cfg.DataDir)
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := config.SaveConfig(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
