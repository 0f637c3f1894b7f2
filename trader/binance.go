package trader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"trailbot/market"
)

// Binance 单次最多返回1000根K线
const klineBatchLimit = 1000

// BinanceVenue Binance 现货场所适配器
// 同时实现 Venue（余额/止损单）与 KlineSource（历史K线）两个端口
type BinanceVenue struct {
	client     *binance.Client
	pair       string
	baseAsset  string
	tradeLimit decimal.Decimal
}

// NewBinanceVenue 构建实盘场所适配器
func NewBinanceVenue(apiKey, secretKey, pair, baseAsset string, tradeLimit decimal.Decimal) *BinanceVenue {
	return &BinanceVenue{
		client:     binance.NewClient(apiKey, secretKey),
		pair:       pair,
		baseAsset:  baseAsset,
		tradeLimit: tradeLimit,
	}
}

// GetBalance 查询基础币可用余额
func (v *BinanceVenue) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	account, err := v.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return decimal.Decimal{}, newVenueError("get balance", err)
	}
	for _, b := range account.Balances {
		if b.Asset != v.baseAsset {
			continue
		}
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return decimal.Decimal{}, newVenueError("get balance", fmt.Errorf("parse free balance %q: %w", b.Free, err))
		}
		return free, nil
	}
	return decimal.Decimal{}, nil
}

// PlaceStopOrder 挂出现货 stop-loss-limit 单，限价与触发价取同一价格
func (v *BinanceVenue) PlaceStopOrder(ctx context.Context, side Side, triggerPrice decimal.Decimal) (string, error) {
	orderSide := binance.SideTypeBuy
	if side == SideASK {
		orderSide = binance.SideTypeSell
	}

	res, err := v.client.NewCreateOrderService().
		Symbol(v.pair).
		Side(orderSide).
		Type(binance.OrderTypeStopLossLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Quantity(v.tradeLimit.String()).
		StopPrice(triggerPrice.String()).
		Price(triggerPrice.String()).
		Do(ctx)
	if err != nil {
		return "", newVenueError("place stop order", err)
	}
	return strconv.FormatInt(res.OrderID, 10), nil
}

// CancelOrder 撤销订单
func (v *BinanceVenue) CancelOrder(ctx context.Context, orderID string) error {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return newVenueError("cancel order", fmt.Errorf("parse order id %q: %w", orderID, err))
	}
	if _, err := v.client.NewCancelOrderService().Symbol(v.pair).OrderID(id).Do(ctx); err != nil {
		return newVenueError("cancel order", err)
	}
	return nil
}

// GetKlines 获取 [from, to) 的历史K线，按开盘时间升序返回
// to 为零值时取到最新；超过单次上限时按开盘时间续页
func (v *BinanceVenue) GetKlines(ctx context.Context, pair string, from, to time.Time, interval string) ([]market.Kline, error) {
	var out []market.Kline
	start := from.UnixMilli()

	for {
		svc := v.client.NewKlinesService().
			Symbol(pair).
			Interval(interval).
			StartTime(start).
			Limit(klineBatchLimit)
		if !to.IsZero() {
			svc = svc.EndTime(to.UnixMilli() - 1)
		}

		batch, err := svc.Do(ctx)
		if err != nil {
			return out, newVenueError("get klines", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, raw := range batch {
			k, err := parseBinanceKline(raw)
			if err != nil {
				return out, newVenueError("get klines", err)
			}
			out = append(out, k)
		}

		if len(batch) < klineBatchLimit {
			break
		}
		start = batch[len(batch)-1].OpenTime + 1
	}

	return out, nil
}

func parseBinanceKline(raw *binance.Kline) (market.Kline, error) {
	open, err := decimal.NewFromString(raw.Open)
	if err != nil {
		return market.Kline{}, fmt.Errorf("parse open %q: %w", raw.Open, err)
	}
	high, err := decimal.NewFromString(raw.High)
	if err != nil {
		return market.Kline{}, fmt.Errorf("parse high %q: %w", raw.High, err)
	}
	low, err := decimal.NewFromString(raw.Low)
	if err != nil {
		return market.Kline{}, fmt.Errorf("parse low %q: %w", raw.Low, err)
	}
	closePx, err := decimal.NewFromString(raw.Close)
	if err != nil {
		return market.Kline{}, fmt.Errorf("parse close %q: %w", raw.Close, err)
	}
	volume, err := decimal.NewFromString(raw.Volume)
	if err != nil {
		return market.Kline{}, fmt.Errorf("parse volume %q: %w", raw.Volume, err)
	}
	return market.Kline{
		StartTime: raw.OpenTime / 1000,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
	}, nil
}
