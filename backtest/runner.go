package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trailbot/market"
	"trailbot/trader"
)

// defaultDustThreshold 模拟钱包卖出后基础币归零，低于该值视为 ASK 已成交
var defaultDustThreshold = decimal.NewFromFloat(0.001)

// Config 单次回测配置
type Config struct {
	Pair        string          `json:"pair"`
	Start       time.Time       `json:"start"` // UTC 起始日 00:00
	End         time.Time       `json:"end"`   // UTC 结束日（不含）
	WalletQuote decimal.Decimal `json:"wallet_quote"`
	TradeLimit  decimal.Decimal `json:"trade_limit"`   // 跟踪止损回测：下单数量
	TrailPct    decimal.Decimal `json:"trail_pct"`     // 跟踪止损回测：止损百分比
	StopLossPct decimal.Decimal `json:"stop_loss_pct"` // 动量回测：止损线，95 表示入场价的95%
	Strategy    string          `json:"strategy"`
}

func (c Config) validate() error {
	if c.Pair == "" {
		return fmt.Errorf("pair required")
	}
	if !c.End.After(c.Start) {
		return fmt.Errorf("end %s must be after start %s", c.End.Format(time.RFC3339), c.Start.Format(time.RFC3339))
	}
	if !c.WalletQuote.IsPositive() {
		return fmt.Errorf("wallet quote must be positive")
	}
	return nil
}

// days 回测覆盖的整天数
func (c Config) days() int {
	return int(c.End.Sub(c.Start).Hours() / 24)
}

// Result 回测结果
// 运行中途失败时返回已产出的部分报告行，调用方据 error 判定是否完整
type Result struct {
	Lines      []string        `json:"lines"`
	Trades     []trader.Trade  `json:"trades"`
	FinalQuote decimal.Decimal `json:"final_quote"`
}

// Runner 回测运行器
// 每次运行构建独立的序列/策略/模拟器/控制器，互不共享状态，
// 多个回测可以并行执行
type Runner struct {
	source trader.KlineSource
}

// NewRunner 构建回测运行器
func NewRunner(source trader.KlineSource) *Runner {
	return &Runner{source: source}
}

// RunStopOrder 跟踪止损回测
// 历史K线逐日拉取（遵守上游分页上限），先以前一天数据预热指标，
// 之后每根K线依次经过：成交检查 → 序列追加 → 控制器状态迁移。
// 相同K线与配置的两次运行产出逐字节一致的报告。
func (r *Runner) RunStopOrder(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	series := market.NewSeries()
	strat, err := market.NewStrategy(cfg.Strategy, series)
	if err != nil {
		return nil, err
	}

	sim := NewSimVenue(cfg.WalletQuote)
	record := trader.NewTradeRecord()
	ctrl := trader.NewController(trader.ControllerConfig{
		Pair:          cfg.Pair,
		TradeLimit:    cfg.TradeLimit,
		TrailPct:      cfg.TrailPct,
		DustThreshold: defaultDustThreshold,
	}, sim, strat, series, record)

	warmup, err := r.source.GetKlines(ctx, cfg.Pair, cfg.Start.AddDate(0, 0, -1), cfg.Start, market.KlineInterval)
	if err != nil {
		return r.partial(sim, record), err
	}
	ctrl.Warmup(warmup)

	for day := 0; day < cfg.days(); day++ {
		from := cfg.Start.AddDate(0, 0, day)
		klines, err := r.source.GetKlines(ctx, cfg.Pair, from, from.AddDate(0, 0, 1), market.KlineInterval)
		if err != nil {
			return r.partial(sim, record), err
		}

		for _, k := range klines {
			sim.OnKline(k)
			if err := ctrl.Tick(ctx, k); err != nil {
				return r.partial(sim, record), err
			}
		}
		sim.AppendLine(dayMarker(day))
	}

	return &Result{
		Lines:      sim.Report(),
		Trades:     record.Trades(),
		FinalQuote: sim.Wallet().Quote,
	}, nil
}

func (r *Runner) partial(sim *SimVenue, record *trader.TradeRecord) *Result {
	return &Result{
		Lines:      sim.Report(),
		Trades:     record.Trades(),
		FinalQuote: sim.Wallet().Quote,
	}
}
