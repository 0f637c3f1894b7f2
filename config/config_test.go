package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"TRADE_PAIR", "BASE_ASSET", "STRATEGY", "ENTRY_REF", "EXIT_REF",
		"TRADE_LIMIT", "TRAIL_PCT", "DUST_THRESHOLD", "PAPER_WALLET",
		"BINANCE_API_KEY", "BINANCE_SECRET_KEY", "PAPER_TRADING",
		"API_ADDR", "JWT_SECRET", "CORS_ORIGINS",
		"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "LOG_DIR", "LOG_LEVEL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}

	if cfg.Pair != "BTCUSDT" {
		t.Errorf("默认交易对 = %s, 期望 BTCUSDT", cfg.Pair)
	}
	if cfg.BaseAsset != "BTC" {
		t.Errorf("基础币应该从交易对推导: %s", cfg.BaseAsset)
	}
	if !cfg.TrailPct.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("默认止损百分比 = %s, 期望 0.5", cfg.TrailPct)
	}
	if !cfg.PaperTrading {
		t.Error("默认应该是纸面交易模式")
	}
	if cfg.EntryRef != "open" || cfg.ExitRef != "close" {
		t.Errorf("默认参考价 = %s/%s, 期望 open/close", cfg.EntryRef, cfg.ExitRef)
	}
}

func TestLoad_BaseAssetOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRADE_PAIR", "ETHUSDT")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseAsset != "ETH" {
		t.Errorf("基础币 = %s, 期望 ETH", cfg.BaseAsset)
	}
}

// TestLoad_MalformedDecimal 数值解析失败直接报错，不静默回落
func TestLoad_MalformedDecimal(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRAIL_PCT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("非法的 TRAIL_PCT 应该报错")
	}
}

func TestLoad_MalformedChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_CHAT_ID", "abc")

	if _, err := Load(); err == nil {
		t.Error("非法的 TELEGRAM_CHAT_ID 应该报错")
	}
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		clearEnv(t)
		cfg, err := Load()
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "默认配置有效",
			mutate: func(*Config) {},
		},
		{
			name:    "交易对为空",
			mutate:  func(c *Config) { c.Pair = "" },
			wantErr: true,
		},
		{
			name:    "下单数量非正",
			mutate:  func(c *Config) { c.TradeLimit = decimal.Decimal{} },
			wantErr: true,
		},
		{
			name:    "止损百分比为0",
			mutate:  func(c *Config) { c.TrailPct = decimal.Decimal{} },
			wantErr: true,
		},
		{
			name:    "止损百分比达到100",
			mutate:  func(c *Config) { c.TrailPct = decimal.NewFromInt(100) },
			wantErr: true,
		},
		{
			name:    "非法参考价",
			mutate:  func(c *Config) { c.EntryRef = "hl2" },
			wantErr: true,
		},
		{
			name:    "实盘模式缺少API密钥",
			mutate:  func(c *Config) { c.PaperTrading = false },
			wantErr: true,
		},
		{
			name: "实盘模式密钥齐全",
			mutate: func(c *Config) {
				c.PaperTrading = false
				c.BinanceAPIKey = "key"
				c.BinanceSecretKey = "secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
