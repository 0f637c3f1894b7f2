package backtest

import "github.com/shopspring/decimal"

// SimWallet 模拟钱包，只在确认成交时变动
// 买入把计价币按成交价换成整数数量的基础币，向下取整后的零头留在计价币侧；
// 卖出把全部基础币按成交价换回计价币
type SimWallet struct {
	Quote decimal.Decimal // 计价币余额（USDT）
	Base  decimal.Decimal // 基础币余额
}

// NewSimWallet 以初始计价币余额构建钱包
func NewSimWallet(quote decimal.Decimal) SimWallet {
	return SimWallet{Quote: quote}
}

// Buy 按 price 把计价币换成基础币，返回买入数量
func (w *SimWallet) Buy(price decimal.Decimal) decimal.Decimal {
	qty := w.Quote.Div(price).Floor()
	w.Base = w.Base.Add(qty)
	w.Quote = w.Quote.Sub(qty.Mul(price))
	return qty
}

// SellAll 按 price 把全部基础币换回计价币，返回卖出数量
func (w *SimWallet) SellAll(price decimal.Decimal) decimal.Decimal {
	qty := w.Base
	w.Quote = w.Quote.Add(qty.Mul(price))
	w.Base = decimal.Decimal{}
	return qty
}
