package market

// Series 追加式K线序列，按 StartTime 严格递增
// 一个实例只归属一个控制器（实盘）或一次回测，不做内部加锁
type Series struct {
	klines []Kline
}

// NewSeries 构建空序列
// 初始容量按4天预热数据（288根/天）预留
func NewSeries() *Series {
	return &Series{klines: make([]Kline, 0, 4*288)}
}

// Append 追加一根K线
// 上游行情偶尔推送迟到或重复的K线，这里静默丢弃：仅当序列为空，
// 或新K线的开盘时间晚于最后一根的结束边界时才追加。
// 返回是否实际追加。
func (s *Series) Append(k Kline) bool {
	if len(s.klines) > 0 && k.StartTime <= s.klines[len(s.klines)-1].StartTime {
		return false
	}
	s.klines = append(s.klines, k)
	return true
}

// EndIndex 最新K线下标，空序列返回 -1
func (s *Series) EndIndex() int {
	return len(s.klines) - 1
}

// Len 序列长度
func (s *Series) Len() int {
	return len(s.klines)
}

// At 返回第 i 根K线，下标越界由调用方保证
func (s *Series) At(i int) Kline {
	return s.klines[i]
}

// Last 最后一根K线，调用前需确认序列非空
func (s *Series) Last() Kline {
	return s.klines[len(s.klines)-1]
}

// CloseAt 第 i 根K线收盘价的 float64 视图，供指标计算使用
func (s *Series) CloseAt(i int) float64 {
	return s.klines[i].Close.InexactFloat64()
}
