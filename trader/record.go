package trader

import "github.com/shopspring/decimal"

// Position 持仓记录，入场时创建，离场时恰好关闭一次
type Position struct {
	Pair        string          `json:"pair"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	EntryAmount decimal.Decimal `json:"entry_amount"`
	EntryTime   int64           `json:"entry_time"`
	ExitPrice   decimal.Decimal `json:"exit_price"`
	ExitAmount  decimal.Decimal `json:"exit_amount"`
	ExitTime    int64           `json:"exit_time"`
}

// Open 持仓是否仍未平仓
func (p Position) Open() bool {
	return p.ExitTime == 0
}

// Trade 一笔已平仓交易及其已实现盈亏
type Trade struct {
	Pair       string          `json:"pair"`
	EntryTime  int64           `json:"entry_time"`
	ExitTime   int64           `json:"exit_time"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	Amount     decimal.Decimal `json:"amount"`
	Profit     decimal.Decimal `json:"profit"`
}

// TradeRecord 已平仓交易的追加式台账
// 实盘日志与回测报告共用；每次回测持有自己独立的实例
type TradeRecord struct {
	trades []Trade
}

// NewTradeRecord 构建空台账
func NewTradeRecord() *TradeRecord {
	return &TradeRecord{}
}

// Append 追加一笔已平仓交易
func (r *TradeRecord) Append(t Trade) {
	r.trades = append(r.trades, t)
}

// Trades 返回台账副本
func (r *TradeRecord) Trades() []Trade {
	out := make([]Trade, len(r.trades))
	copy(out, r.trades)
	return out
}

// Len 台账笔数
func (r *TradeRecord) Len() int {
	return len(r.trades)
}
