package trader

import (
	"errors"
	"testing"

	"github.com/adshao/go-binance/v2"
)

var errTest = errors.New("test error")

func TestParseBinanceKline(t *testing.T) {
	raw := &binance.Kline{
		OpenTime: 1704067200000,
		Open:     "42000.10",
		High:     "42100.00",
		Low:      "41900.50",
		Close:    "42050.00",
		Volume:   "123.456",
	}

	k, err := parseBinanceKline(raw)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if k.StartTime != 1704067200 {
		t.Errorf("开盘时间应该从毫秒转为秒，got %d", k.StartTime)
	}
	if k.High.String() != "42100" {
		t.Errorf("最高价 = %s, 期望 42100", k.High)
	}
}

func TestParseBinanceKline_Malformed(t *testing.T) {
	raw := &binance.Kline{
		OpenTime: 1704067200000,
		Open:     "not-a-price",
		High:     "1",
		Low:      "1",
		Close:    "1",
		Volume:   "1",
	}
	if _, err := parseBinanceKline(raw); err == nil {
		t.Error("非法价格应该报错")
	}
}

func TestVenueErrorUnwrap(t *testing.T) {
	inner := &VenueError{Op: "get balance", Err: errTest}
	if inner.Unwrap() != errTest {
		t.Error("Unwrap 应该返回底层错误")
	}
	if inner.Error() != "venue get balance: test error" {
		t.Errorf("错误文案 = %q", inner.Error())
	}
}
