package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trailbot/market"
)

// Side 订单方向
type Side string

const (
	SideBID Side = "BID" // 买入止损单（入场）
	SideASK Side = "ASK" // 卖出止损单（跟踪离场）
)

// Venue 交易场所端口
// 实盘由 BinanceVenue 实现，回测/纸面交易由 backtest.SimVenue 实现，
// 控制器对两者不做区分。所有失败都包装为 *VenueError。
type Venue interface {
	// GetBalance 查询基础币可用余额
	GetBalance(ctx context.Context) (decimal.Decimal, error)
	// PlaceStopOrder 挂出指定方向的止损单，返回订单ID
	PlaceStopOrder(ctx context.Context, side Side, triggerPrice decimal.Decimal) (string, error)
	// CancelOrder 撤销订单
	CancelOrder(ctx context.Context, orderID string) error
}

// KlineSource 历史K线端口，按开盘时间升序返回
// to 为零值时表示取到最新
type KlineSource interface {
	GetKlines(ctx context.Context, pair string, from, to time.Time, interval string) ([]market.Kline, error)
}

// VenueError 交易场所调用失败
// 控制器收到该错误时中止当前tick，状态机与订单台账保持原样，
// 等待下一次调度重试
type VenueError struct {
	Op  string
	Err error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue %s: %v", e.Op, e.Err)
}

func (e *VenueError) Unwrap() error {
	return e.Err
}

func newVenueError(op string, err error) *VenueError {
	return &VenueError{Op: op, Err: err}
}
