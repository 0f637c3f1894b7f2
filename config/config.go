package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config 进程级配置
// 全部来自环境变量，.env 文件仅作为本地开发的补充，已设置的变量不会被覆盖
type Config struct {
	// 交易
	Pair          string          // 交易对，如 BTCUSDT
	BaseAsset     string          // 基础币，如 BTC
	Strategy      string          // 信号策略名
	TradeLimit    decimal.Decimal // 基础币下单数量
	TrailPct      decimal.Decimal // 跟踪止损百分比
	DustThreshold decimal.Decimal // 低于该余额视为卖单已成交
	EntryRef      string          // 入场触发价参考：open / close
	ExitRef       string          // 出场触发价参考：open / close

	// 交易所
	BinanceAPIKey    string
	BinanceSecretKey string
	PaperTrading     bool            // true 时用模拟撮合代替真实下单
	PaperWallet      decimal.Decimal // 模拟撮合的初始计价币余额

	// API 服务
	APIAddr     string
	JWTSecret   string
	CORSOrigins []string

	// 通知与日志
	TelegramToken  string
	TelegramChatID int64
	LogDir         string
	LogLevel       string
}

// Load 读取配置
// 解析失败的数值字段直接报错而不是静默取默认值，避免带错参数下单
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Pair:      getEnv("TRADE_PAIR", "BTCUSDT"),
		BaseAsset: getEnv("BASE_ASSET", ""),
		Strategy:  getEnv("STRATEGY", "momentum"),
		EntryRef:  getEnv("ENTRY_REF", "open"),
		ExitRef:   getEnv("EXIT_REF", "close"),

		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceSecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		PaperTrading:     getEnv("PAPER_TRADING", "true") == "true",

		APIAddr:     getEnv("API_ADDR", ":8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "*"), ","),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogDir:        getEnv("LOG_DIR", "logs"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.BaseAsset == "" {
		cfg.BaseAsset = strings.TrimSuffix(cfg.Pair, "USDT")
	}

	var err error
	if cfg.TradeLimit, err = getDecimal("TRADE_LIMIT", "40"); err != nil {
		return nil, err
	}
	if cfg.TrailPct, err = getDecimal("TRAIL_PCT", "0.5"); err != nil {
		return nil, err
	}
	if cfg.DustThreshold, err = getDecimal("DUST_THRESHOLD", "0.001"); err != nil {
		return nil, err
	}
	if cfg.PaperWallet, err = getDecimal("PAPER_WALLET", "1000"); err != nil {
		return nil, err
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64); err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID 无效: %w", err)
		}
	}

	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Pair == "" {
		return fmt.Errorf("TRADE_PAIR 不能为空")
	}
	if !c.TradeLimit.IsPositive() {
		return fmt.Errorf("TRADE_LIMIT 必须为正数，当前 %s", c.TradeLimit)
	}
	if !c.TrailPct.IsPositive() || c.TrailPct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("TRAIL_PCT 必须在 (0, 100) 区间，当前 %s", c.TrailPct)
	}
	if c.EntryRef != "open" && c.EntryRef != "close" {
		return fmt.Errorf("ENTRY_REF 只能是 open 或 close，当前 %q", c.EntryRef)
	}
	if c.ExitRef != "open" && c.ExitRef != "close" {
		return fmt.Errorf("EXIT_REF 只能是 open 或 close，当前 %q", c.ExitRef)
	}
	if !c.PaperTrading && (c.BinanceAPIKey == "" || c.BinanceSecretKey == "") {
		return fmt.Errorf("实盘模式必须设置 BINANCE_API_KEY 和 BINANCE_SECRET_KEY")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	v := getEnv(key, fallback)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s 无效: %w", key, err)
	}
	return d, nil
}
