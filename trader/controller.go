package trader

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"trailbot/market"
)

// State 控制器状态
type State string

const (
	// StateFlat 无持仓、无挂单
	StateFlat State = "FLAT"
	// StateEntering BID 止损单已挂出，等待成交
	StateEntering State = "ENTERING"
	// StateLong 持仓已建立，尚未挂出保护性 ASK 单
	StateLong State = "LONG"
	// StateExiting ASK 止损单已挂出，逐tick棘轮收紧并等待成交
	StateExiting State = "EXITING"
)

// RefPrice 触发价计算的参考价
type RefPrice string

const (
	RefOpen  RefPrice = "open"
	RefClose RefPrice = "close"
)

// ControllerConfig 控制器参数
type ControllerConfig struct {
	Pair          string
	TradeLimit    decimal.Decimal // 基础币下单数量
	TrailPct      decimal.Decimal // 跟踪止损百分比，0.5 表示 0.5%
	DustThreshold decimal.Decimal // 低于该余额视为 ASK 已成交
	EntryRef      RefPrice        // BID 触发价参考，默认 open
	ExitRef       RefPrice        // ASK 触发价参考，默认 close
}

// Status 控制器对外可见的状态快照
// 状态机字段只由tick线程触碰，API等其他协程一律读这里发布的副本
type Status struct {
	State    State           `json:"state"`
	OrderID  string          `json:"order_id"`
	AskRef   decimal.Decimal `json:"ask_ref"`
	Position Position        `json:"position"`
}

// Controller 跟踪止损状态机
// 独占持有订单台账与持仓；一个实例只被一个调度循环（或一次回测）驱动，
// tick 之间严格串行，状态机字段本身不加锁。
// 每个tick结束后在 statusMu 下发布一份 Status 快照供跨协程读取
type Controller struct {
	cfg    ControllerConfig
	venue  Venue
	signal market.Signal
	series *market.Series
	record *TradeRecord

	state    State
	orderID  string
	bidPrice decimal.Decimal // 当前 BID 触发价，成交后作为入场价记录
	askRef   decimal.Decimal // ASK 触发价棘轮参考，持仓期间只升不降
	position Position

	bidPct decimal.Decimal // (100 + TrailPct) / 100
	askPct decimal.Decimal // (100 - TrailPct) / 100

	statusMu sync.RWMutex
	status   Status

	// 可选回调，在入场/平仓落账后触发（通知、JSONL日志）
	onEntry func(Position)
	onExit  func(Trade)
}

var hundred = decimal.NewFromInt(100)

// NewController 构建控制器
// series 与 signal 必须基于同一份K线数据
func NewController(cfg ControllerConfig, venue Venue, signal market.Signal, series *market.Series, record *TradeRecord) *Controller {
	if cfg.EntryRef == "" {
		cfg.EntryRef = RefOpen
	}
	if cfg.ExitRef == "" {
		cfg.ExitRef = RefClose
	}
	return &Controller{
		cfg:    cfg,
		venue:  venue,
		signal: signal,
		series: series,
		record: record,
		state:  StateFlat,
		bidPct: hundred.Add(cfg.TrailPct).Div(hundred),
		askPct: hundred.Sub(cfg.TrailPct).Div(hundred),
		status: Status{State: StateFlat},
	}
}

// OnEntry 注册入场回调
func (c *Controller) OnEntry(fn func(Position)) { c.onEntry = fn }

// OnExit 注册平仓回调
func (c *Controller) OnExit(fn func(Trade)) { c.onExit = fn }

// Status 最近一次tick发布的状态快照，可在任意协程调用
func (c *Controller) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

// publish 在tick线程上更新快照
func (c *Controller) publish() {
	c.statusMu.Lock()
	c.status = Status{
		State:    c.state,
		OrderID:  c.orderID,
		AskRef:   c.askRef,
		Position: c.position,
	}
	c.statusMu.Unlock()
}

// State 当前状态
func (c *Controller) State() State { return c.Status().State }

// Position 当前持仓快照
func (c *Controller) Position() Position { return c.Status().Position }

// AskRef 当前 ASK 棘轮参考价
func (c *Controller) AskRef() decimal.Decimal { return c.Status().AskRef }

// OrderID 当前挂单ID，无挂单时为空串
func (c *Controller) OrderID() string { return c.Status().OrderID }

// Record 交易台账
func (c *Controller) Record() *TradeRecord { return c.record }

// Warmup 将历史K线灌入序列，不触发任何交易逻辑
func (c *Controller) Warmup(klines []market.Kline) {
	for _, k := range klines {
		c.series.Append(k)
	}
}

// Tick 处理一根新K线
// venue 调用失败时返回错误并保持状态机、挂单、持仓完全不变，
// 下一次调度重复同样的判定即是重试
func (c *Controller) Tick(ctx context.Context, k market.Kline) error {
	defer c.publish()
	c.series.Append(k)

	switch c.state {
	case StateFlat:
		return c.tickFlat(ctx, k)
	case StateEntering:
		return c.tickEntering(ctx, k)
	case StateLong:
		return c.tickLong(ctx, k)
	case StateExiting:
		return c.tickExiting(ctx, k)
	}
	return nil
}

// tickFlat 空仓：入场信号出现时挂出 BID 止损单
// 触发价 = max(参考价 * (100+pct)%, 最高价)，保证挂在当前K线上方
func (c *Controller) tickFlat(ctx context.Context, k market.Kline) error {
	if !c.signal.ShouldEnter(c.series.EndIndex()) {
		return nil
	}

	price := c.refPrice(k, c.cfg.EntryRef).Mul(c.bidPct)
	if price.LessThan(k.High) {
		price = k.High
	}

	orderID, err := c.venue.PlaceStopOrder(ctx, SideBID, price)
	if err != nil {
		return err
	}

	c.orderID = orderID
	c.bidPrice = price
	c.state = StateEntering
	log.Info().
		Str("pair", c.cfg.Pair).
		Str("order_id", orderID).
		Str("price", price.String()).
		Str("amount", c.cfg.TradeLimit.String()).
		Msg("BID stop order placed")
	return nil
}

// tickEntering 等待 BID 成交：余额达到下单数量即视为成交；
// 在此之前若出现出场信号，撤单回到空仓——挂单绝不跨越一个已失效的信号周期
func (c *Controller) tickEntering(ctx context.Context, k market.Kline) error {
	balance, err := c.venue.GetBalance(ctx)
	if err != nil {
		return err
	}

	if balance.GreaterThanOrEqual(c.cfg.TradeLimit) {
		c.position = Position{
			Pair:        c.cfg.Pair,
			EntryPrice:  c.bidPrice,
			EntryAmount: c.cfg.TradeLimit,
			EntryTime:   k.StartTime,
		}
		c.orderID = ""
		c.state = StateLong
		log.Info().
			Str("pair", c.cfg.Pair).
			Str("entry_price", c.position.EntryPrice.String()).
			Str("amount", c.position.EntryAmount.String()).
			Msg("BID stop order filled, position opened")
		if c.onEntry != nil {
			c.onEntry(c.position)
		}
		return nil
	}

	if c.signal.ShouldExit(c.series.EndIndex()) {
		if c.orderID != "" {
			if err := c.venue.CancelOrder(ctx, c.orderID); err != nil {
				return err
			}
		}
		log.Info().Str("pair", c.cfg.Pair).Str("order_id", c.orderID).Msg("entry signal invalidated, BID stop order canceled")
		c.orderID = ""
		c.bidPrice = decimal.Decimal{}
		c.state = StateFlat
	}
	return nil
}

// tickLong 持仓已建立：挂出首个保护性 ASK 单并进入 EXITING
// 棘轮参考此时为零，首个触发价必然通过棘轮检查
func (c *Controller) tickLong(ctx context.Context, k market.Kline) error {
	price := c.trailPrice(k)
	if !price.GreaterThan(c.askRef) {
		return nil
	}

	orderID, err := c.venue.PlaceStopOrder(ctx, SideASK, price)
	if err != nil {
		return err
	}

	c.orderID = orderID
	c.askRef = price
	c.state = StateExiting
	log.Info().
		Str("pair", c.cfg.Pair).
		Str("order_id", orderID).
		Str("price", price.String()).
		Msg("ASK stop order placed")
	return nil
}

// tickExiting 等待 ASK 成交，同时逐tick收紧触发价
// 新触发价只在严格高于棘轮参考时才替换挂单（先撤后挂），止损只收紧不放松
func (c *Controller) tickExiting(ctx context.Context, k market.Kline) error {
	balance, err := c.venue.GetBalance(ctx)
	if err != nil {
		return err
	}

	if balance.LessThan(c.cfg.DustThreshold) {
		return c.closePosition(k)
	}

	price := c.trailPrice(k)
	if !price.GreaterThan(c.askRef) {
		return nil
	}

	if c.orderID != "" {
		if err := c.venue.CancelOrder(ctx, c.orderID); err != nil {
			return err
		}
		// 撤单已生效。之后挂单若失败，orderID 置空、棘轮参考不变，
		// 下一tick同一触发价仍然通过棘轮检查，挂单得到重试
		c.orderID = ""
	}

	orderID, err := c.venue.PlaceStopOrder(ctx, SideASK, price)
	if err != nil {
		return err
	}

	c.orderID = orderID
	c.askRef = price
	log.Info().
		Str("pair", c.cfg.Pair).
		Str("order_id", orderID).
		Str("price", price.String()).
		Msg("ASK stop order tightened")
	return nil
}

// closePosition ASK 已成交：按最后的触发价落账平仓，回到空仓
func (c *Controller) closePosition(k market.Kline) error {
	c.position.ExitPrice = c.askRef
	c.position.ExitAmount = c.position.EntryAmount
	c.position.ExitTime = k.StartTime

	trade := Trade{
		Pair:       c.cfg.Pair,
		EntryTime:  c.position.EntryTime,
		ExitTime:   c.position.ExitTime,
		EntryPrice: c.position.EntryPrice,
		ExitPrice:  c.position.ExitPrice,
		Amount:     c.position.EntryAmount,
		Profit:     c.position.ExitPrice.Sub(c.position.EntryPrice).Mul(c.position.EntryAmount),
	}
	c.record.Append(trade)

	log.Info().
		Str("pair", c.cfg.Pair).
		Str("exit_price", trade.ExitPrice.String()).
		Str("profit", trade.Profit.String()).
		Msg("ASK stop order filled, position closed")

	c.orderID = ""
	c.askRef = decimal.Decimal{}
	c.bidPrice = decimal.Decimal{}
	c.position = Position{}
	c.state = StateFlat

	if c.onExit != nil {
		c.onExit(trade)
	}
	return nil
}

// trailPrice 跟踪止损触发价 = max(参考价 * (100-pct)%, 最低价)
func (c *Controller) trailPrice(k market.Kline) decimal.Decimal {
	price := c.refPrice(k, c.cfg.ExitRef).Mul(c.askPct)
	if price.LessThan(k.Low) {
		price = k.Low
	}
	return price
}

func (c *Controller) refPrice(k market.Kline, ref RefPrice) decimal.Decimal {
	if ref == RefClose {
		return k.Close
	}
	return k.Open
}
