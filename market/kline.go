package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// KlineInterval 本部署固定使用5分钟K线
const (
	KlineInterval = "5m"
	KlineDuration = 5 * time.Minute
)

// Kline 单根K线 OHLCV
// 价格与成交量使用 decimal，供订单/钱包计算直接复用，避免浮点累积误差
// StartTime 为上游返回的开盘时间（unix秒）；上游以开盘时间标记K线，
// 该时间同时是上一根K线的结束边界
type Kline struct {
	StartTime int64           `json:"start_time"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// Time 开盘时间
func (k Kline) Time() time.Time {
	return time.Unix(k.StartTime, 0).UTC()
}
