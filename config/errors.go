// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidMetricsAddr indicates the metrics listen address is malformed.
	ErrInvalidMetricsAddr = errors.New("config: invalid metrics address")

	// ErrInvalidRPCURL indicates the RPC endpoint is not an http(s) URL.
	ErrInvalidRPCURL = errors.New("config: invalid rpc url")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidUnitPrice indicates the ticket price is not a positive decimal.
	ErrInvalidUnitPrice = errors.New("config: unit price must be a positive decimal")

	// ErrInvalidRevealDelay indicates a reveal delay outside [1, MaxRevealDelay] blocks.
	ErrInvalidRevealDelay = errors.New("config: reveal delay must be between 1 and 256 blocks")

	// ErrInvalidWithdrawFee indicates a withdrawal fee above one million parts per million.
	ErrInvalidWithdrawFee = errors.New("config: withdraw fee must not exceed 1000000 ppm")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)
