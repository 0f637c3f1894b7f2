package backtest

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestWalletBuy 买入数量向下取整，零头留在计价币侧
func TestWalletBuy(t *testing.T) {
	tests := []struct {
		name      string
		quote     string
		price     string
		wantQty   string
		wantQuote string
	}{
		{
			name:      "整除时零头为0",
			quote:     "1000",
			price:     "100",
			wantQty:   "10",
			wantQuote: "0",
		},
		{
			name:      "不整除时零头留存",
			quote:     "1000",
			price:     "3",
			wantQty:   "333",
			wantQuote: "1",
		},
		{
			name:      "买不起一个单位时数量为0",
			quote:     "50",
			price:     "100",
			wantQty:   "0",
			wantQuote: "50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewSimWallet(decimal.RequireFromString(tt.quote))
			qty := w.Buy(decimal.RequireFromString(tt.price))

			if !qty.Equal(decimal.RequireFromString(tt.wantQty)) {
				t.Errorf("买入数量 = %s, 期望 %s", qty, tt.wantQty)
			}
			if !w.Quote.Equal(decimal.RequireFromString(tt.wantQuote)) {
				t.Errorf("剩余计价币 = %s, 期望 %s", w.Quote, tt.wantQuote)
			}
			if !w.Base.Equal(qty) {
				t.Errorf("基础币余额 = %s, 期望 %s", w.Base, qty)
			}
		})
	}
}

func TestWalletSellAll(t *testing.T) {
	w := NewSimWallet(decimal.RequireFromString("1000"))
	w.Buy(decimal.RequireFromString("3")) // 333个，剩1

	qty := w.SellAll(decimal.RequireFromString("4"))
	if !qty.Equal(decimal.RequireFromString("333")) {
		t.Errorf("卖出数量 = %s, 期望 333", qty)
	}
	if !w.Quote.Equal(decimal.RequireFromString("1333")) {
		t.Errorf("计价币余额 = %s, 期望 1333", w.Quote)
	}
	if !w.Base.IsZero() {
		t.Errorf("基础币余额 = %s, 期望 0", w.Base)
	}
}
