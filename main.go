package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"trailbot/api"
	"trailbot/backtest"
	"trailbot/config"
	"trailbot/logger"
	"trailbot/market"
	"trailbot/notify"
	"trailbot/trader"
)

// defaultJWTSecret .env.example 里带的占位密钥，任何部署都必须替换
const defaultJWTSecret = "your-jwt-secret-key-change-in-production-make-it-long-and-random"

// tradeLogRetentionDays 交易记录保留天数，更旧的每天清理一次
const tradeLogRetentionDays = 90

// validateJWTSecret 启动时的 JWT 密钥安全检查
func validateJWTSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET 未设置")
	}
	if secret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET 仍是默认占位值，必须替换为随机密钥")
	}
	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET 长度不足：需要至少32字符，当前%d字符", len(secret))
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("配置无效")
	}
	if err := validateJWTSecret(cfg.JWTSecret); err != nil {
		log.Fatal().Err(err).Msg("JWT 密钥检查未通过")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 历史K线始终走交易所REST，回测接口也复用同一个源
	binance := trader.NewBinanceVenue(cfg.BinanceAPIKey, cfg.BinanceSecretKey, cfg.Pair, cfg.BaseAsset, cfg.TradeLimit)

	series := market.NewSeries()
	strat, err := market.NewStrategy(cfg.Strategy, series)
	if err != nil {
		log.Fatal().Err(err).Msg("策略初始化失败")
	}

	var (
		venue   trader.Venue = binance
		preTick func(market.Kline)
	)
	if cfg.PaperTrading {
		sim := backtest.NewSimVenue(cfg.PaperWallet)
		venue = sim
		preTick = sim.OnKline
		log.Info().Str("wallet", cfg.PaperWallet.String()).Msg("纸面交易模式：订单走模拟撮合")
	} else {
		log.Info().Str("api_key", logger.RedactAPIKey(cfg.BinanceAPIKey)).Msg("实盘模式：订单直达交易所")
	}

	record := trader.NewTradeRecord()
	ctrl := trader.NewController(trader.ControllerConfig{
		Pair:          cfg.Pair,
		TradeLimit:    cfg.TradeLimit,
		TrailPct:      cfg.TrailPct,
		DustThreshold: cfg.DustThreshold,
		EntryRef:      trader.RefPrice(cfg.EntryRef),
		ExitRef:       trader.RefPrice(cfg.ExitRef),
	}, venue, strat, series, record)

	tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram 初始化失败")
	}

	tradeLog := logger.NewTradeLogger(cfg.LogDir)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := tradeLog.CleanOldTrades(tradeLogRetentionDays); err != nil {
					log.Warn().Err(err).Msg("清理旧交易记录失败")
				}
			}
		}
	}()
	ctrl.OnEntry(tg.NotifyEntry)
	ctrl.OnExit(func(t trader.Trade) {
		if err := tradeLog.LogTrade(t); err != nil {
			log.Warn().Err(err).Msg("交易落盘失败")
		}
		tg.NotifyExit(t)
	})

	monitor := market.NewWsMonitor(cfg.Pair, market.KlineInterval)
	sched := trader.NewScheduler(ctrl, binance, cfg.Pair, market.KlineDuration).
		WithMonitor(monitor).
		WithPreTick(preTick)

	if err := sched.Preload(ctx); err != nil {
		log.Fatal().Err(err).Msg("历史K线预热失败")
	}

	go monitor.Run(ctx)
	go sched.Run(ctx)

	server := api.NewServer(api.Options{
		Addr:        cfg.APIAddr,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	}, backtest.NewRunner(binance), ctrl, tradeLog)
	go func() {
		if err := server.Run(); err != nil {
			log.Error().Err(err).Msg("API 服务退出")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("收到退出信号，停止调度")
}
