package market

import (
	"testing"
)

func seriesFromCloses(closes []float64) *Series {
	s := NewSeries()
	for i, c := range closes {
		s.Append(testKline(int64(i)*300, c, c+0.5, c-0.5, c))
	}
	return s
}

// vShapedCloses 先涨建立趋势，随后回落，最后恢复上涨
// 动量策略应该在回落段给出离场、在恢复段给出入场
func vShapedCloses() []float64 {
	var closes []float64
	price := 100.0
	for i := 0; i < 250; i++ { // 长期上涨，EMA50 稳定在 EMA200 上方
		price += 0.3
		closes = append(closes, price)
	}
	for i := 0; i < 25; i++ { // 回落
		price -= 0.4
		closes = append(closes, price)
	}
	for i := 0; i < 40; i++ { // 恢复
		price += 0.5
		closes = append(closes, price)
	}
	return closes
}

func TestNewStrategy(t *testing.T) {
	s := NewSeries()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "momentum", input: StrategyMomentum},
		{name: "moving", input: StrategyMoving},
		{name: "空名称取默认策略", input: ""},
		{name: "未知名称报错", input: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStrategy(tt.input, s)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStrategy(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestMovingMomentumStrategy_IndexBounds(t *testing.T) {
	s := NewSeries()
	strat := NewMovingMomentumStrategy(s)

	if strat.ShouldEnter(0) || strat.ShouldExit(0) {
		t.Error("空序列不应产生任何信号")
	}

	s.Append(testKline(0, 100, 101, 99, 100))
	if strat.ShouldEnter(0) {
		t.Error("首根K线没有前值，不应产生入场信号")
	}
	if strat.ShouldEnter(5) {
		t.Error("越界下标不应产生信号")
	}
}

// TestMovingMomentumStrategy_VShape 回落段出现离场信号、恢复段出现入场信号
func TestMovingMomentumStrategy_VShape(t *testing.T) {
	closes := vShapedCloses()
	s := seriesFromCloses(closes)
	strat := NewMovingMomentumStrategy(s)

	exitSeen := false
	for i := 250; i < 275; i++ {
		if strat.ShouldExit(i) {
			exitSeen = true
			break
		}
	}
	if !exitSeen {
		t.Error("回落段应该至少出现一次离场信号")
	}

	enterSeen := false
	for i := 275; i < len(closes); i++ {
		if strat.ShouldEnter(i) {
			enterSeen = true
			break
		}
	}
	if !enterSeen {
		t.Error("恢复段应该至少出现一次入场信号")
	}
}

// TestMovingMomentumStrategy_Deterministic 相同输入两次判定结果一致
func TestMovingMomentumStrategy_Deterministic(t *testing.T) {
	closes := vShapedCloses()

	run := func() []bool {
		s := seriesFromCloses(closes)
		strat := NewMovingMomentumStrategy(s)
		out := make([]bool, len(closes))
		for i := range closes {
			out[i] = strat.ShouldEnter(i)
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("第%d根K线的判定不一致", i)
		}
	}
}

// TestMovingMomentumStrategy_SyncIdempotent 重复判定同一下标不改变结果
func TestMovingMomentumStrategy_SyncIdempotent(t *testing.T) {
	s := seriesFromCloses(vShapedCloses())
	strat := NewMovingMomentumStrategy(s)

	idx := s.EndIndex()
	first := strat.ShouldEnter(idx)
	for i := 0; i < 10; i++ {
		if got := strat.ShouldEnter(idx); got != first {
			t.Fatalf("第%d次重复判定结果漂移", i)
		}
	}
}

// TestMovingStrategy_SteadyTrends 持续下跌中出现入场、持续上涨中出现离场
func TestMovingStrategy_SteadyTrends(t *testing.T) {
	var closes []float64
	price := 200.0
	for i := 0; i < 60; i++ {
		price -= 1
		closes = append(closes, price)
	}
	s := seriesFromCloses(closes)
	strat := NewMovingStrategy(s)

	enterSeen := false
	for i := 1; i < len(closes); i++ {
		if strat.ShouldEnter(i) {
			enterSeen = true
			break
		}
	}
	if !enterSeen {
		t.Error("持续下跌中柱状图收敛走高，应该出现入场信号")
	}

	closes = closes[:0]
	price = 100.0
	for i := 0; i < 60; i++ {
		price += 1
		closes = append(closes, price)
	}
	s = seriesFromCloses(closes)
	strat = NewMovingStrategy(s)

	exitSeen := false
	for i := 1; i < len(closes); i++ {
		if strat.ShouldExit(i) {
			exitSeen = true
			break
		}
	}
	if !exitSeen {
		t.Error("持续上涨中柱状图收敛走低，应该出现离场信号")
	}
}
