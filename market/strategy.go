package market

import "fmt"

// Signal 信号端口
// 核心状态机只依赖这两个布尔判定，不关心指标如何计算
type Signal interface {
	// ShouldEnter 第 index 根K线是否满足入场条件
	ShouldEnter(index int) bool
	// ShouldExit 第 index 根K线是否满足出场条件
	ShouldExit(index int) bool
}

// 可选策略名
const (
	StrategyMomentum = "momentum"
	StrategyMoving   = "moving"
)

// NewStrategy 按名称构建策略，series 为策略读取的同一份K线序列
func NewStrategy(name string, series *Series) (Signal, error) {
	switch name {
	case StrategyMomentum, "":
		return NewMovingMomentumStrategy(series), nil
	case StrategyMoving:
		return NewMovingStrategy(series), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// MovingMomentumStrategy 中期动量策略
// SMA(5) 平滑收盘价；EMA50/EMA200 判定趋势方向；
// SMA 上的 MACD(12,26) 与其 EMA9 信号线的交叉作为入场/出场信号：
// 趋势向上且 signal 下穿 macd 时入场，signal 上穿 macd 时出场
type MovingMomentumStrategy struct {
	series *Series

	sma      *smaState
	shortEma *emaState
	longEma  *emaState
	macd     *macdState

	shortVals  []float64
	longVals   []float64
	macdVals   []float64
	signalVals []float64
}

// NewMovingMomentumStrategy 构建动量策略
func NewMovingMomentumStrategy(series *Series) *MovingMomentumStrategy {
	return &MovingMomentumStrategy{
		series:   series,
		sma:      newSMAState(5),
		shortEma: newEMAState(50),
		longEma:  newEMAState(200),
		macd:     newMACDState(12, 26, 9),
	}
}

// sync 将指标序列推进到K线序列当前长度
// 每根新K线只追加一次，序列不回退，重复调用是幂等的
func (s *MovingMomentumStrategy) sync() {
	for i := len(s.macdVals); i < s.series.Len(); i++ {
		smoothed := s.sma.push(s.series.CloseAt(i))
		s.shortVals = append(s.shortVals, s.shortEma.push(smoothed))
		s.longVals = append(s.longVals, s.longEma.push(smoothed))
		macd, signal := s.macd.push(smoothed)
		s.macdVals = append(s.macdVals, macd)
		s.signalVals = append(s.signalVals, signal)
	}
}

func (s *MovingMomentumStrategy) ShouldEnter(index int) bool {
	s.sync()
	if index <= 0 || index >= len(s.macdVals) {
		return false
	}
	trendUp := s.shortVals[index] > s.longVals[index]
	return trendUp && crossedDown(s.signalVals, s.macdVals, index)
}

func (s *MovingMomentumStrategy) ShouldExit(index int) bool {
	s.sync()
	if index <= 0 || index >= len(s.macdVals) {
		return false
	}
	return crossedUp(s.signalVals, s.macdVals, index)
}

// MovingStrategy 短线柱状图策略
// SMA(2) 平滑收盘价后取 MACD(12,26) 与 EMA9 信号线，
// macd 位于信号线下方且柱状图走高时入场，位于上方且柱状图走低时出场
type MovingStrategy struct {
	series *Series

	sma  *smaState
	macd *macdState

	macdVals   []float64
	signalVals []float64
	histVals   []float64
}

// NewMovingStrategy 构建短线策略
func NewMovingStrategy(series *Series) *MovingStrategy {
	return &MovingStrategy{
		series: series,
		sma:    newSMAState(2),
		macd:   newMACDState(12, 26, 9),
	}
}

func (s *MovingStrategy) sync() {
	for i := len(s.macdVals); i < s.series.Len(); i++ {
		smoothed := s.sma.push(s.series.CloseAt(i))
		macd, signal := s.macd.push(smoothed)
		s.macdVals = append(s.macdVals, macd)
		s.signalVals = append(s.signalVals, signal)
		s.histVals = append(s.histVals, macd-signal)
	}
}

func (s *MovingStrategy) ShouldEnter(index int) bool {
	s.sync()
	if index <= 0 || index >= len(s.macdVals) {
		return false
	}
	rising := s.histVals[index] > s.histVals[index-1]
	return s.macdVals[index] < s.signalVals[index] && rising
}

func (s *MovingStrategy) ShouldExit(index int) bool {
	s.sync()
	if index <= 0 || index >= len(s.macdVals) {
		return false
	}
	falling := s.histVals[index] < s.histVals[index-1]
	return s.macdVals[index] > s.signalVals[index] && falling
}
