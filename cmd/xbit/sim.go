package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/config"
	"github.com/lott3ry/libxbit-go/exchange"
	"github.com/lott3ry/libxbit-go/ledger"
	"github.com/lott3ry/libxbit-go/metrics"
	"github.com/lott3ry/libxbit-go/network"
	"github.com/lott3ry/libxbit-go/store"
	"github.com/lott3ry/libxbit-go/token"
	"github.com/lott3ry/libxbit-go/units"
	"github.com/lott3ry/libxbit-go/vault"
	"github.com/lott3ry/libxbit-go/xbit"
)

const dbFileName = "xbit.db"

func runSim(args []string) error {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	common := addCommonFlags(fs)
	save := fs.String("save", "0.5", "WBTC the saver deposits into the pool")
	play := fs.String("play", "100", "USDT spent on each lottery purchase")
	ratio := fs.Uint32("referrer-ratio", 50_000, "referrer fee ratio, parts per million")
	hold := fs.Bool("hold", false, "keep serving metrics after the run until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		metrics.BuildInfo.WithLabelValues(version, commit).Set(1)
		srv := serveMetrics(cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	db, err := store.Open(filepath.Join(cfg.DataDir, dbFileName))
	if err != nil {
		return err
	}
	defer db.Close()

	sim, err := newSimulation(cfg, db, log)
	if err != nil {
		return err
	}
	if err := sim.run(ctx, *save, *play, *ratio); err != nil {
		return err
	}

	if *hold && cfg.MetricsAddr != "" {
		log.Info("serving metrics, interrupt to exit", "addr", cfg.MetricsAddr)
		<-ctx.Done()
	}
	return nil
}

func serveMetrics(addr string, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// simulation is a local deployment: in-memory tokens, market and chain, with
// requests and referrers persisted to the bbolt database.
type simulation struct {
	log      *slog.Logger
	chain    *network.MemChain
	contract *xbit.Contract
	usdt     *token.Token
	wbtc     *token.Token
	xbit     *token.Token
	xexp     *token.Token

	owner, saver, referrer chain.Address
}

func newAccount() (chain.Address, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return chain.Address{}, fmt.Errorf("generate key: %w", err)
	}
	return chain.AddressFromPubKey(&priv.PublicKey)
}

func newSimulation(cfg config.Config, db *store.BoltStore, log *slog.Logger) (*simulation, error) {
	s := &simulation{log: log}
	for _, a := range []*chain.Address{&s.owner, &s.saver, &s.referrer} {
		addr, err := newAccount()
		if err != nil {
			return nil, err
		}
		*a = addr
	}
	log.Debug("accounts", "owner", s.owner, "saver", s.saver, "referrer", s.referrer)

	contractAddr := chain.AddressFromSeed("xbit")
	l := token.NewLedger()
	var err error
	if s.usdt, err = l.NewToken(chain.AddressFromSeed("usdt"), "USDT", 6, token.Options{StrictApprove: true}); err != nil {
		return nil, err
	}
	if s.wbtc, err = l.NewToken(chain.AddressFromSeed("wbtc"), "WBTC", 8, token.Options{}); err != nil {
		return nil, err
	}
	if s.xexp, err = l.NewToken(chain.AddressFromSeed("xexp"), "XEXP", 18, token.Options{}); err != nil {
		return nil, err
	}
	if s.xbit, err = l.NewToken(contractAddr, "XBIT", 18, token.Options{}); err != nil {
		return nil, err
	}

	// 1 WBTC = 50,000 USDT
	router := exchange.NewRouter(chain.AddressFromSeed("router"))
	provider := chain.AddressFromSeed("liquidity")
	usdtDepth, wbtcDepth := units.MustParseUnits("1000000", 6), units.MustParseUnits("20", 8)
	if err := s.usdt.Mint(provider, usdtDepth); err != nil {
		return nil, err
	}
	if err := s.wbtc.Mint(provider, wbtcDepth); err != nil {
		return nil, err
	}
	if err := router.AddLiquidity(provider, s.usdt, s.wbtc, usdtDepth, wbtcDepth); err != nil {
		return nil, err
	}

	if err := s.usdt.Mint(s.saver, units.MustParseUnits("10000", 6)); err != nil {
		return nil, err
	}
	if err := s.wbtc.Mint(s.saver, units.MustParseUnits("10", 8)); err != nil {
		return nil, err
	}

	unitPrice, err := units.ParseUnits(cfg.UnitPrice, 6)
	if err != nil {
		return nil, fmt.Errorf("unit price: %w", err)
	}
	var fee vault.FeePolicy = vault.NoFee{}
	if cfg.WithdrawFeePPM > 0 {
		p, err := vault.NewProportionalFee(cfg.WithdrawFeePPM)
		if err != nil {
			return nil, err
		}
		fee = p
	}

	s.chain = network.NewMemChain("xbit-sim")
	s.chain.Mine(16)
	s.contract, err = xbit.Deploy(xbit.Config{
		Address:     contractAddr,
		Owner:       s.owner,
		Ledger:      l,
		Reserve:     s.wbtc,
		Shares:      s.xbit,
		Stable:      s.usdt,
		Reward:      s.xexp,
		Exchange:    router,
		Chain:       s.chain,
		Requests:    db.Requests(),
		Referrers:   db.Referrers(),
		WithdrawFee: fee,
		UnitPrice:   unitPrice,
		RevealDelay: cfg.RevealDelay,
		DevMode:     cfg.Network != "mainnet",
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}
	return s, nil
}

func (s *simulation) approveUSDT(amount *uint256.Int) error {
	spender := s.contract.Address()
	if err := s.usdt.Approve(s.saver, spender, new(uint256.Int)); err != nil {
		return err
	}
	return s.usdt.Approve(s.saver, spender, amount)
}

func (s *simulation) run(ctx context.Context, saveAmount, playAmount string, ratio uint32) error {
	saveWBTC, err := units.ParseUnits(saveAmount, 8)
	if err != nil {
		return fmt.Errorf("--save: %w", err)
	}
	playUSDT, err := units.ParseUnits(playAmount, 6)
	if err != nil {
		return fmt.Errorf("--play: %w", err)
	}
	c := s.contract

	if err := s.wbtc.Approve(s.saver, c.Address(), saveWBTC); err != nil {
		return err
	}
	minted, err := c.Save(ctx, s.saver, saveWBTC)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	s.log.Info("saved", "wbtc", units.FormatUnits(saveWBTC, 8), "xbit", units.FormatUnits(minted, 18))

	if err := c.Register(ctx, s.referrer, ratio); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	ticket, err := c.EstimateTicket(ctx, playUSDT)
	if err != nil {
		return fmt.Errorf("estimate ticket: %w", err)
	}
	s.log.Info("ticket estimated", "usdt", playAmount, "wbtc", units.FormatUnits(ticket, 8))

	if err := s.approveUSDT(playUSDT); err != nil {
		return err
	}
	id, err := c.UnsafeLottery(ctx, s.saver, playUSDT, s.referrer, nil)
	if err != nil {
		return fmt.Errorf("unsafe lottery: %w", err)
	}
	if err := s.report(ctx, id); err != nil {
		return err
	}

	if err := s.approveUSDT(playUSDT); err != nil {
		return err
	}
	id, err = c.SafeLottery(ctx, s.saver, playUSDT, s.referrer)
	if err != nil {
		return fmt.Errorf("safe lottery: %w", err)
	}
	s.chain.Mine(int(c.Engine().RevealDelay()) + 1)
	if err := c.Reveal(ctx, s.saver, id); err != nil {
		return fmt.Errorf("reveal %d: %w", id, err)
	}
	if err := s.report(ctx, id); err != nil {
		return err
	}

	if stable := s.usdt.BalanceOf(c.Address()); !stable.IsZero() {
		out, err := c.Swap(ctx, s.owner, stable)
		if err != nil {
			return fmt.Errorf("swap: %w", err)
		}
		s.log.Info("pool swapped", "usdt", units.FormatUnits(stable, 6), "wbtc", units.FormatUnits(out, 8))
	}

	half := new(uint256.Int).Rsh(s.xbit.BalanceOf(s.saver), 1)
	paid, err := c.Withdraw(ctx, s.saver, half)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}

	ids, err := c.RequestIDsByAddress(ctx, s.saver)
	if err != nil {
		return err
	}
	s.log.Info("run complete",
		"withdrawn_wbtc", units.FormatUnits(paid, 8),
		"pool_wbtc", units.FormatUnits(c.Vault().Reserve(), 8),
		"share_price_wbtc", units.FormatUnits(c.Vault().SharePrice(), 8),
		"referrer_wbtc", units.FormatUnits(s.wbtc.BalanceOf(s.referrer), 8),
		"saver_xexp", units.FormatUnits(s.xexp.BalanceOf(s.saver), 18),
		"saver_requests", len(ids),
		"events", c.Events().Len(),
	)
	return nil
}

func (s *simulation) report(ctx context.Context, id uint64) error {
	req, err := s.contract.RequestStatusByID(ctx, id)
	if err != nil {
		return err
	}
	if req.State() != ledger.StateFulfilled {
		return fmt.Errorf("request %d is %s", id, req.State())
	}
	s.log.Info("lottery settled",
		"request", id,
		"tickets", req.Quantity,
		"levels", req.RewardLevels,
		"wbtc_out", units.FormatUnits(&req.WBTCOut, 8),
		"xexp_out", units.FormatUnits(&req.XEXPOut, 18),
		"referrer_fee", units.FormatUnits(&req.WBTCFee, 8),
	)
	return nil
}
