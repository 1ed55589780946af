package app

import (
	"log/slog"

	"otc_go/internal/domain"
	"otc_go/internal/event"
	"otc_go/internal/infra"
	"otc_go/internal/infra/storage"
	"otc_go/internal/market"
	"otc_go/internal/oracle"
	"otc_go/internal/token"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Tokens  *token.Registry
	Oracle  *oracle.PoolOracle
	Market  *market.Market
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize wires config, logging, storage, tokens, the oracle and the
// market, then restores the persisted ledger. emit receives every market
// notification and may be nil.
func (b *Bootstrap) Initialize(configPath string, emit func(event.Event)) error {
	slog.Info("🚀 Bootstrapping OTC market...")

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	b.Tokens = token.NewRegistry()
	for _, tc := range cfg.Tokens {
		tok := token.New(domain.Asset{Address: tc.Address, Symbol: tc.Symbol, Decimals: tc.Decimals})
		for _, seed := range tc.Seed {
			tok.Mint(seed.Account, seed.Amount)
		}
		b.Tokens.Register(tok)
	}

	b.Oracle = oracle.NewPoolOracle(cfg.Oracle.Address)
	for _, pc := range cfg.Oracle.Pools {
		b.Oracle.SetPool(oracle.Pool{
			AssetA:   pc.AssetA,
			AssetB:   pc.AssetB,
			ReserveA: pc.ReserveA,
			ReserveB: pc.ReserveB,
		})
	}

	b.Market = market.New(cfg.Market.Address, cfg.Market.Owner, b.Oracle, b.Tokens, store, emit)
	if err := b.restore(); err != nil {
		return err
	}

	event.Warmup()
	return nil
}

// restore reloads the persisted ledger and rebuilds the custodial balances
// the in-memory tokens lost across the restart: every open offer's remaining
// escrow is re-minted to the market account.
func (b *Bootstrap) restore() error {
	state, err := b.Storage.LoadState()
	if err != nil {
		return err
	}
	offers, err := b.Storage.LoadOffers()
	if err != nil {
		return err
	}

	var counter, eventSeq uint64
	if state != nil {
		counter = state.OfferCounter
		eventSeq = state.EventSeq
	}
	b.Market.Restore(offers, counter, eventSeq)

	restoredOpen := 0
	for _, off := range offers {
		if !off.IsOpen() {
			continue
		}
		restoredOpen++
		if tok, ok := b.Tokens.Get(off.AssetOffered); ok {
			tok.Mint(b.Market.Address(), off.AmountRemaining)
		} else {
			slog.Warn("restored offer references unknown asset",
				slog.Uint64("id", off.ID), slog.String("asset", off.AssetOffered))
		}
	}

	slog.Info("✅ Ledger restored",
		slog.Int("offers", len(offers)),
		slog.Int("open", restoredOpen),
		slog.Uint64("last_id", b.Market.GetOfferID()))
	return nil
}
