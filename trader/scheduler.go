package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"trailbot/market"
)

const (
	// tickGrace K线收盘后等待的缓冲，确保上游已经产出完整的收盘K线
	tickGrace = 30 * time.Second
	// tickTimeout 单个tick内所有场所调用的总超时
	tickTimeout = 45 * time.Second
	// preloadDays 启动时预热的历史天数
	preloadDays = 4
)

// Scheduler 实盘调度器
// 每个K线周期在收盘边界后触发一次tick。tick 在调度循环内同步执行，
// 循环本身就是串行保证，绝不并发下单/撤单；tick 超时后等待的是
// 下一个周期边界，不会补跑错过的周期。
type Scheduler struct {
	ctrl     *Controller
	source   KlineSource
	pair     string
	interval time.Duration

	// monitor 可选：启用后从 websocket 缓存取最近收盘K线，替代每tick的REST轮询
	monitor *market.WsMonitor
	// preTick 可选：纸面模式下在控制器之前对K线做模拟成交检查
	preTick func(market.Kline)
}

// NewScheduler 构建调度器
func NewScheduler(ctrl *Controller, source KlineSource, pair string, interval time.Duration) *Scheduler {
	return &Scheduler{
		ctrl:     ctrl,
		source:   source,
		pair:     pair,
		interval: interval,
	}
}

// WithMonitor 启用 websocket K线缓存
func (s *Scheduler) WithMonitor(m *market.WsMonitor) *Scheduler {
	s.monitor = m
	return s
}

// WithPreTick 注册tick前置钩子
func (s *Scheduler) WithPreTick(fn func(market.Kline)) *Scheduler {
	s.preTick = fn
	return s
}

// Preload 预热最近 preloadDays 天的K线，只灌入序列不触发交易
func (s *Scheduler) Preload(ctx context.Context) error {
	from := time.Now().UTC().AddDate(0, 0, -preloadDays)
	klines, err := s.source.GetKlines(ctx, s.pair, from, time.Time{}, market.KlineInterval)
	if err != nil {
		return err
	}
	s.ctrl.Warmup(klines)
	log.Info().Int("klines", len(klines)).Str("pair", s.pair).Msg("candle series preloaded")
	return nil
}

// Run 调度循环，直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := s.untilNextTick(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := s.tickOnce(ctx); err != nil {
			log.Error().Err(err).Msg("tick aborted, state preserved for retry")
		}
	}
}

// untilNextTick 距下一次触发点（周期边界 + tickGrace）的等待时长
func (s *Scheduler) untilNextTick(now time.Time) time.Duration {
	next := now.Add(-tickGrace).Truncate(s.interval).Add(s.interval).Add(tickGrace)
	return next.Sub(now)
}

func (s *Scheduler) tickOnce(ctx context.Context) error {
	tctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	kline, err := s.latestClosed(tctx)
	if err != nil {
		return err
	}

	if s.preTick != nil {
		s.preTick(kline)
	}
	return s.ctrl.Tick(tctx, kline)
}

// latestClosed 取最近一根已收盘K线
func (s *Scheduler) latestClosed(ctx context.Context) (market.Kline, error) {
	if s.monitor != nil {
		if k, ok := s.monitor.LastClosed(s.pair); ok {
			return k, nil
		}
		// 缓存尚未就绪（刚启动/刚重连），退回REST
	}

	klines, err := s.source.GetKlines(ctx, s.pair, time.Now().Add(-30*time.Minute), time.Time{}, market.KlineInterval)
	if err != nil {
		return market.Kline{}, err
	}
	if len(klines) < 2 {
		return market.Kline{}, fmt.Errorf("not enough klines for %s: got %d", s.pair, len(klines))
	}
	// 最后一根尚未收盘，取倒数第二根
	return klines[len(klines)-2], nil
}
