package market

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testKline(startTime int64, o, h, l, c float64) Kline {
	return Kline{
		StartTime: startTime,
		Open:      decimal.NewFromFloat(o),
		High:      decimal.NewFromFloat(h),
		Low:       decimal.NewFromFloat(l),
		Close:     decimal.NewFromFloat(c),
		Volume:    decimal.NewFromInt(1),
	}
}

// TestSeriesAppend_Dedup 迟到或重复的K线应该被静默丢弃
func TestSeriesAppend_Dedup(t *testing.T) {
	tests := []struct {
		name       string
		startTimes []int64
		wantKept   []int64
	}{
		{
			name:       "严格递增全部保留",
			startTimes: []int64{0, 300, 600},
			wantKept:   []int64{0, 300, 600},
		},
		{
			name:       "重复的开盘时间丢弃",
			startTimes: []int64{0, 300, 300, 600},
			wantKept:   []int64{0, 300, 600},
		},
		{
			name:       "迟到的K线丢弃",
			startTimes: []int64{0, 600, 300, 900},
			wantKept:   []int64{0, 600, 900},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSeries()
			for _, st := range tt.startTimes {
				s.Append(testKline(st, 100, 101, 99, 100))
			}
			if s.Len() != len(tt.wantKept) {
				t.Fatalf("期望保留%d根，实际%d根", len(tt.wantKept), s.Len())
			}
			for i, want := range tt.wantKept {
				if got := s.At(i).StartTime; got != want {
					t.Errorf("第%d根开盘时间 = %d, 期望 %d", i, got, want)
				}
			}
		})
	}
}

func TestSeriesAppend_ReturnValue(t *testing.T) {
	s := NewSeries()
	if !s.Append(testKline(0, 100, 101, 99, 100)) {
		t.Error("首根K线应该追加成功")
	}
	if s.Append(testKline(0, 100, 101, 99, 100)) {
		t.Error("重复K线应该返回false")
	}
}

func TestSeriesEndIndex(t *testing.T) {
	s := NewSeries()
	if got := s.EndIndex(); got != -1 {
		t.Errorf("空序列 EndIndex = %d, 期望 -1", got)
	}

	s.Append(testKline(0, 100, 101, 99, 100))
	s.Append(testKline(300, 100, 101, 99, 100))
	if got := s.EndIndex(); got != 1 {
		t.Errorf("EndIndex = %d, 期望 1", got)
	}
	if got := s.Last().StartTime; got != 300 {
		t.Errorf("Last().StartTime = %d, 期望 300", got)
	}
}
