package market

// =============================================================================
// 技术指标增量计算
// 这些状态机按K线逐根推进，每根只做 O(1) 工作，不依赖任何外部状态
// =============================================================================

// emaState EMA 增量状态
// 首个值直接取输入（与 ta4j 的 EMAIndicator 起点一致），之后按
// ema = (v - ema) * k + ema 递推
type emaState struct {
	multiplier float64
	value      float64
	count      int
}

func newEMAState(period int) *emaState {
	return &emaState{multiplier: 2.0 / float64(period+1)}
}

func (e *emaState) push(v float64) float64 {
	if e.count == 0 {
		e.value = v
	} else {
		e.value = (v-e.value)*e.multiplier + e.value
	}
	e.count++
	return e.value
}

// smaState SMA 增量状态（滑动窗口）
// 数据未满窗口时对已有数据取均值
type smaState struct {
	period int
	window []float64
	sum    float64
}

func newSMAState(period int) *smaState {
	return &smaState{period: period, window: make([]float64, 0, period)}
}

func (s *smaState) push(v float64) float64 {
	s.window = append(s.window, v)
	s.sum += v
	if len(s.window) > s.period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}
	return s.sum / float64(len(s.window))
}

// macdState MACD 增量状态
// macd = EMA(fast) - EMA(slow)，signal = EMA(macd, signalPeriod)
type macdState struct {
	fast, slow, signal *emaState
}

func newMACDState(fastPeriod, slowPeriod, signalPeriod int) *macdState {
	return &macdState{
		fast:   newEMAState(fastPeriod),
		slow:   newEMAState(slowPeriod),
		signal: newEMAState(signalPeriod),
	}
}

// push 推入一个输入值，返回 (macd线, signal线)
func (m *macdState) push(v float64) (macd, signal float64) {
	macd = m.fast.push(v) - m.slow.push(v)
	signal = m.signal.push(macd)
	return macd, signal
}

// crossedDown first 是否在 index 处下穿 second
// prev 取 >=，当前取 <，相等不算穿越
func crossedDown(first, second []float64, index int) bool {
	if index <= 0 || index >= len(first) {
		return false
	}
	return first[index-1] >= second[index-1] && first[index] < second[index]
}

// crossedUp first 是否在 index 处上穿 second
func crossedUp(first, second []float64, index int) bool {
	if index <= 0 || index >= len(first) {
		return false
	}
	return first[index-1] <= second[index-1] && first[index] > second[index]
}
