package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Sensitive or per-deployment
// values can be overridden through environment variables after load.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Address string `yaml:"address"` // custody account
		Owner   string `yaml:"owner"`
	} `yaml:"market"`

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		PprofAddr  string `yaml:"pprof_addr"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Tokens []TokenConfig `yaml:"tokens"`

	Oracle struct {
		Address string       `yaml:"address"`
		Pools   []PoolConfig `yaml:"pools"`
	} `yaml:"oracle"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// TokenConfig declares an asset and its initial balances (funding harness).
type TokenConfig struct {
	Address  string       `yaml:"address"`
	Symbol   string       `yaml:"symbol"`
	Decimals int32        `yaml:"decimals"`
	Seed     []SeedConfig `yaml:"seed"`
}

// SeedConfig mints an initial balance to an account, in base units.
type SeedConfig struct {
	Account string          `yaml:"account"`
	Amount  decimal.Decimal `yaml:"amount"`
}

// PoolConfig declares a liquidity pool backing the oracle, reserves in base
// units.
type PoolConfig struct {
	AssetA   string          `yaml:"asset_a"`
	AssetB   string          `yaml:"asset_b"`
	ReserveA decimal.Decimal `yaml:"reserve_a"`
	ReserveB decimal.Decimal `yaml:"reserve_b"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides, then validates.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks structural soundness of the loaded configuration.
func (c *Config) Validate() error {
	if c.Market.Address == "" {
		return fmt.Errorf("market address is required")
	}
	if c.Market.Owner == "" {
		return fmt.Errorf("market owner is required")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen_addr is required")
	}
	if c.Oracle.Address == "" {
		return fmt.Errorf("oracle address is required")
	}

	known := make(map[string]bool, len(c.Tokens))
	for i, tok := range c.Tokens {
		if tok.Address == "" {
			return fmt.Errorf("token[%d]: address is required", i)
		}
		if known[tok.Address] {
			return fmt.Errorf("token[%d]: duplicate address %s", i, tok.Address)
		}
		known[tok.Address] = true
		if tok.Decimals < 0 {
			return fmt.Errorf("token %s: negative decimals", tok.Address)
		}
		for _, seed := range tok.Seed {
			if seed.Amount.IsNegative() {
				return fmt.Errorf("token %s: negative seed for %s", tok.Address, seed.Account)
			}
		}
	}

	for i, pool := range c.Oracle.Pools {
		if pool.AssetA == pool.AssetB {
			return fmt.Errorf("pool[%d]: identical assets", i)
		}
		if !known[pool.AssetA] || !known[pool.AssetB] {
			return fmt.Errorf("pool[%d]: references an undeclared token", i)
		}
		if !pool.ReserveA.IsPositive() || !pool.ReserveB.IsPositive() {
			return fmt.Errorf("pool[%d]: reserves must be positive", i)
		}
	}

	return nil
}

// overrideWithEnv applies per-deployment environment overrides.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("OTC_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if path := os.Getenv("OTC_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if level := os.Getenv("OTC_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
