package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `
market:
  address: "0xmarket"
  owner: "0xowner"
server:
  listen_addr: "localhost:8080"
storage:
  path: "data/otc.db"
logging:
  level: debug
tokens:
  - address: "0xweth"
    symbol: WETH
    decimals: 18
    seed:
      - account: "0xalice"
        amount: "1000"
  - address: "0xdai"
    symbol: DAI
    decimals: 18
oracle:
  address: "pool-oracle-1"
  pools:
    - asset_a: "0xweth"
      asset_b: "0xdai"
      reserve_a: "1000"
      reserve_b: "2000000"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Market.Owner != "0xowner" {
		t.Errorf("owner = %s", cfg.Market.Owner)
	}
	if len(cfg.Tokens) != 2 || len(cfg.Oracle.Pools) != 1 {
		t.Errorf("tokens=%d pools=%d", len(cfg.Tokens), len(cfg.Oracle.Pools))
	}
	if cfg.Tokens[0].Seed[0].Amount.IsZero() {
		t.Error("seed amount did not parse")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("OTC_LISTEN_ADDR", "localhost:9999")
	t.Setenv("OTC_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.ListenAddr != "localhost:9999" {
		t.Errorf("listen addr = %s, want override", cfg.Server.ListenAddr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %s, want warn", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mangle  func(*Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"Missing Owner", func(c *Config) { c.Market.Owner = "" }, true},
		{"Duplicate Token", func(c *Config) { c.Tokens[1].Address = c.Tokens[0].Address }, true},
		{"Pool Unknown Asset", func(c *Config) { c.Oracle.Pools[0].AssetB = "0xghost" }, true},
		{"Pool Same Asset", func(c *Config) { c.Oracle.Pools[0].AssetB = c.Oracle.Pools[0].AssetA }, true},
		{"Pool Zero Reserve", func(c *Config) { c.Oracle.Pools[0].ReserveA = c.Oracle.Pools[0].ReserveA.Sub(c.Oracle.Pools[0].ReserveA) }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, validConfig))
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			tc.mangle(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
