package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/lott3ry/libxbit-go/referrer"
	"github.com/lott3ry/libxbit-go/store"
)

const referrersUsage = `usage: xbit referrers <list|export|import> [flags] [file]

  list     print every registered referrer and its ratio
  export   write a snapshot of every referrer ratio to file
  import   restore referrer ratios from a snapshot file
`

func runReferrers(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, referrersUsage)
		return errors.New("referrers: missing subcommand")
	}
	sub := args[0]
	switch sub {
	case "list", "export", "import":
	case "-h", "--help", "help":
		fmt.Print(referrersUsage)
		return nil
	default:
		fmt.Fprint(os.Stderr, referrersUsage)
		return fmt.Errorf("referrers: unknown subcommand %q", sub)
	}

	fs := flag.NewFlagSet("referrers "+sub, flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	file := fs.Arg(0)
	if sub != "list" && file == "" {
		return fmt.Errorf("referrers %s: missing snapshot file", sub)
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := store.Open(filepath.Join(cfg.DataDir, dbFileName))
	if err != nil {
		return err
	}
	defer db.Close()

	reg := referrer.NewRegistry(db.Referrers(), nil, log)
	ctx := context.Background()

	switch sub {
	case "list":
		entries, err := reg.Entries(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %d ppm\n", e.Address, e.RatioPerMillion)
		}
	case "export":
		data, err := reg.Export(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, data, 0600); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Info("referrer snapshot exported", "file", file, "bytes", len(data))
	case "import":
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		n, err := reg.Import(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d referrers\n", n)
	}
	return nil
}
