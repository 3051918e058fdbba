// Command xbit manages an Xbit deployment: it writes the configuration
// file, runs a local in-memory deployment persisted to bbolt, and queries a
// node over JSON-RPC.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/lott3ry/libxbit-go/config"
	"github.com/lott3ry/libxbit-go/logger"
	"github.com/lott3ry/libxbit-go/network"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
)

const usage = `usage: xbit <command> [flags]

commands:
  init       write a configuration file into the data directory
  sim        run a local deployment and play through save, lottery, referral and swap
  status     query the configured node for its tip and a ticket quote
  referrers  list, export or import the referrer ratios of the database
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// A missing .env is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "sim":
		return runSim(args[1:])
	case "status":
		return runStatus(args[1:])
	case "referrers":
		return runReferrers(args[1:])
	case "version":
		fmt.Printf("xbit %s (%s)\n", version, commit)
		return nil
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

// commonFlags are shared by every command that reads the config file.
type commonFlags struct {
	dataDir  *string
	logLevel *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		dataDir:  fs.String("datadir", config.DefaultDataDir(), "data directory holding the config file and database"),
		logLevel: fs.String("log-level", "", "override the configured log level (debug, info, warn, error)"),
	}
}

// loadConfig reads the config file of the data directory, falling back to
// defaults when none was written yet.
func (c commonFlags) loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(*c.dataDir))
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg = config.DefaultConfig()
		err = nil
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg.DataDir = *c.dataDir
	if *c.logLevel != "" {
		cfg.LogLevel = *c.logLevel
	}
	return cfg, config.ValidateConfig(cfg)
}

// newLogger builds the command logger: colored on stderr, plain when
// appending to the configured log file.
func newLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogFile == "" {
		return logger.New(os.Stderr, level, false), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.New(f, level, true), f, nil
}

// envRPC collects the RPC environment variables, .env included.
func envRPC() map[string]string {
	env := make(map[string]string)
	for _, k := range []string{network.EnvRPCURL, network.EnvRPCUser, network.EnvRPCPass} {
		if v := os.Getenv(k); v != "" {
			env[k] = v
		}
	}
	return env
}
