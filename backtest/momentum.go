package backtest

import (
	"context"

	"github.com/shopspring/decimal"

	"trailbot/market"
	"trailbot/trader"
)

var hundred = decimal.NewFromInt(100)

// RunMomentum 动量回测
// 不挂止损单：入场信号出现时按收盘价市价买入，持仓期间
// 收盘价跌破入场价的止损线立即市价卖出，离场信号出现时平仓并记账。
// 止损触发后仓位视角仍保持到离场信号，报告行以止损价为离场价。
func (r *Runner) RunMomentum(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	series := market.NewSeries()
	strat, err := market.NewStrategy(cfg.Strategy, series)
	if err != nil {
		return nil, err
	}

	wallet := NewSimWallet(cfg.WalletQuote)
	record := trader.NewTradeRecord()
	stopRatio := cfg.StopLossPct.Div(hundred)

	var (
		lines        []string
		open         bool
		entryPrice   decimal.Decimal
		exitPrice    decimal.Decimal
		amount       decimal.Decimal
		entryTime    int64
		walletBefore decimal.Decimal
	)

	warmup, err := r.source.GetKlines(ctx, cfg.Pair, cfg.Start.AddDate(0, 0, -1), cfg.Start, market.KlineInterval)
	if err != nil {
		return &Result{Lines: lines, Trades: record.Trades(), FinalQuote: wallet.Quote}, err
	}
	for _, k := range warmup {
		series.Append(k)
	}

	for day := 0; day < cfg.days(); day++ {
		from := cfg.Start.AddDate(0, 0, day)
		klines, err := r.source.GetKlines(ctx, cfg.Pair, from, from.AddDate(0, 0, 1), market.KlineInterval)
		if err != nil {
			return &Result{Lines: lines, Trades: record.Trades(), FinalQuote: wallet.Quote}, err
		}

		for _, k := range klines {
			if !series.Append(k) {
				continue
			}
			idx := series.EndIndex()
			closePrice := k.Close

			if !open && strat.ShouldEnter(idx) {
				entryTime = k.StartTime
				walletBefore = wallet.Quote
				amount = wallet.Buy(closePrice)
				entryPrice = closePrice
				exitPrice = closePrice
				open = true
			}

			if open && wallet.Base.IsPositive() && cfg.StopLossPct.IsPositive() &&
				closePrice.Div(entryPrice).LessThan(stopRatio) {
				wallet.SellAll(closePrice)
				exitPrice = closePrice
			}

			if open && strat.ShouldExit(idx) {
				if wallet.Base.IsPositive() {
					wallet.SellAll(closePrice)
					exitPrice = closePrice
				}
				lines = append(lines, reportLine(entryTime, k.StartTime, entryPrice, exitPrice, walletBefore, wallet.Quote))
				record.Append(trader.Trade{
					Pair:       cfg.Pair,
					EntryTime:  entryTime,
					ExitTime:   k.StartTime,
					EntryPrice: entryPrice,
					ExitPrice:  exitPrice,
					Amount:     amount,
					Profit:     exitPrice.Sub(entryPrice).Mul(amount),
				})
				open = false
			}
		}
		lines = append(lines, dayMarker(day))
	}

	return &Result{Lines: lines, Trades: record.Trades(), FinalQuote: wallet.Quote}, nil
}
