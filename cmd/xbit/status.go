package main

import (
	"context"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/exchange"
	"github.com/lott3ry/libxbit-go/network"
	"github.com/lott3ry/libxbit-go/units"
)

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	common := addCommonFlags(fs)
	rpcURL := fs.String("rpc-url", "", "node JSON-RPC URL (overrides config and XBIT_RPC_URL)")
	rpcUser := fs.String("rpc-user", "", "JSON-RPC basic auth user")
	rpcPass := fs.String("rpc-pass", "", "JSON-RPC basic auth password")
	router := fs.String("router", "", "exchange router address; enables the ticket quote")
	usdt := fs.String("usdt", "", "USDT token address")
	wbtc := fs.String("wbtc", "", "WBTC token address")
	timeout := fs.Duration("timeout", 15*time.Second, "overall request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}

	flags := &network.RPCConfig{URL: *rpcURL, User: *rpcUser, Password: *rpcPass}
	if flags.URL == "" {
		flags.URL = cfg.RPCURL
	}
	rpcCfg, err := network.ResolveConfig(flags, envRPC(), cfg.Network)
	if err != nil {
		return err
	}
	client := network.NewRPCClient(*rpcCfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	tip, err := client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	hash, err := client.BlockHash(ctx, tip)
	if err != nil {
		return fmt.Errorf("block hash: %w", err)
	}
	fmt.Printf("Network:  %s\n", rpcCfg.Network)
	fmt.Printf("Node:     %s\n", rpcCfg.URL)
	fmt.Printf("Tip:      %d %s\n", tip, hash)

	if *router == "" {
		return nil
	}
	path := make([]chain.Address, 2)
	for i, s := range []string{*usdt, *wbtc} {
		if path[i], err = chain.ParseAddress(s); err != nil {
			return fmt.Errorf("token address %q: %w", s, err)
		}
	}
	routerAddr, err := chain.ParseAddress(*router)
	if err != nil {
		return fmt.Errorf("router address: %w", err)
	}
	unitPrice, err := units.ParseUnits(cfg.UnitPrice, 6)
	if err != nil {
		return fmt.Errorf("unit price: %w", err)
	}
	ticket, err := exchange.NewRouterQuoter(client, routerAddr).EstimateOut(ctx, unitPrice, path)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	fmt.Printf("Ticket:   %s USDT = %s WBTC\n", cfg.UnitPrice, units.FormatUnits(ticket, 8))
	return nil
}
