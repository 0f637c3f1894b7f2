package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultStreamEndpoint = "wss://stream.binance.com:9443/ws"

// WsMonitor 通过 websocket 订阅K线流，缓存每个交易对最近一根已收盘的K线
// 启用后实盘调度器直接读缓存，不必每个tick都走一次REST
type WsMonitor struct {
	url string

	mu         sync.RWMutex
	lastClosed map[string]Kline
}

// NewWsMonitor 构建指定交易对/周期的K线流监控
func NewWsMonitor(pair, interval string) *WsMonitor {
	stream := strings.ToLower(pair) + "@kline_" + interval
	return &WsMonitor{
		url:        defaultStreamEndpoint + "/" + stream,
		lastClosed: make(map[string]Kline),
	}
}

// wsKlineEvent Binance kline 流消息
type wsKlineEvent struct {
	EventType string  `json:"e"`
	Symbol    string  `json:"s"`
	Kline     wsKline `json:"k"`
}

type wsKline struct {
	StartTime int64  `json:"t"` // 开盘时间（毫秒）
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Final     bool   `json:"x"` // 该K线是否已收盘
}

// Run 维持订阅直到 ctx 取消，断线后指数退避重连
func (m *WsMonitor) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		err := m.stream(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Str("url", m.url).Msg("kline stream disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (m *WsMonitor) stream(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// ctx 取消时关闭连接，打断阻塞中的 ReadJSON
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	log.Info().Str("url", m.url).Msg("kline stream connected")

	for {
		var event wsKlineEvent
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}
		if event.EventType != "kline" || !event.Kline.Final {
			continue
		}
		kline, err := event.Kline.toKline()
		if err != nil {
			log.Warn().Err(err).Str("symbol", event.Symbol).Msg("drop malformed kline event")
			continue
		}
		m.mu.Lock()
		m.lastClosed[event.Symbol] = kline
		m.mu.Unlock()
	}
}

// LastClosed 返回指定交易对最近一根已收盘K线
func (m *WsMonitor) LastClosed(pair string) (Kline, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.lastClosed[strings.ToUpper(pair)]
	return k, ok
}

func (k wsKline) toKline() (Kline, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return Kline{}, err
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return Kline{}, err
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return Kline{}, err
	}
	closePx, err := decimal.NewFromString(k.Close)
	if err != nil {
		return Kline{}, err
	}
	volume, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return Kline{}, err
	}
	return Kline{
		StartTime: k.StartTime / 1000,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
	}, nil
}
