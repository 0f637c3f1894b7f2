package backtest

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trailbot/market"
	"trailbot/trader"
)

// simOrder 模拟止损单
type simOrder struct {
	id          string
	price       decimal.Decimal
	active      bool
	filledAt    int64           // 成交K线的开盘时间
	quoteWallet decimal.Decimal // 成交时刻的计价币余额快照（BID取成交前，ASK取成交后）
}

// SimVenue 成交模拟器，替代实盘场所驱动同一个控制器
// 每个方向最多一张活动挂单；每根K线对每张挂单至多产生一次成交。
// 一次回测独占一个实例，不做内部加锁。
type SimVenue struct {
	wallet SimWallet
	bid    simOrder
	ask    simOrder
	lines  []string
}

// NewSimVenue 以初始计价币余额构建模拟器
func NewSimVenue(quote decimal.Decimal) *SimVenue {
	return &SimVenue{wallet: NewSimWallet(quote)}
}

// Wallet 当前钱包快照
func (v *SimVenue) Wallet() SimWallet {
	return v.wallet
}

// Report 已完成往返交易的报告行
func (v *SimVenue) Report() []string {
	out := make([]string, len(v.lines))
	copy(out, v.lines)
	return out
}

// AppendLine 追加一条报告行（回测器用于日界标记）
func (v *SimVenue) AppendLine(line string) {
	v.lines = append(v.lines, line)
}

// OnKline 对一根K线做成交检查，必须在控制器tick之前调用
// 挂单价严格落在 (low, high) 区间内才成交——价格恰好触及边界不算；
// 成交价取该K线的收盘价
func (v *SimVenue) OnKline(k market.Kline) {
	if v.bid.active && v.bid.price.GreaterThan(k.Low) && v.bid.price.LessThan(k.High) {
		v.bid.filledAt = k.StartTime
		v.bid.quoteWallet = v.wallet.Quote
		v.wallet.Buy(k.Close)
		v.bid.active = false
	}

	if v.ask.active && v.ask.price.GreaterThan(k.Low) && v.ask.price.LessThan(k.High) {
		v.ask.filledAt = k.StartTime
		v.wallet.SellAll(k.Close)
		v.ask.quoteWallet = v.wallet.Quote
		v.ask.active = false

		v.lines = append(v.lines, reportLine(
			v.bid.filledAt,
			v.ask.filledAt,
			v.bid.price,
			v.ask.price,
			v.bid.quoteWallet,
			v.ask.quoteWallet,
		))
	}
}

// GetBalance 返回基础币余额
func (v *SimVenue) GetBalance(_ context.Context) (decimal.Decimal, error) {
	return v.wallet.Base, nil
}

// PlaceStopOrder 挂出模拟止损单，同侧已有挂单被直接顶替
func (v *SimVenue) PlaceStopOrder(_ context.Context, side trader.Side, triggerPrice decimal.Decimal) (string, error) {
	order := simOrder{id: uuid.NewString(), price: triggerPrice, active: true}
	if side == trader.SideBID {
		v.bid = order
	} else {
		v.ask = order
	}
	return order.id, nil
}

// CancelOrder 撤销挂单；与实盘语义一致，两侧最多各一张，全部置为不活动
func (v *SimVenue) CancelOrder(_ context.Context, _ string) error {
	v.bid.active = false
	v.ask.active = false
	return nil
}
