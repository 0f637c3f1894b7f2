package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// reportLine 单笔交易的报告行
// 固定格式，实盘日志与回测夹具共用：
// "<入场时间> <出场时间>   <入场价:.3f> <出场价:.3f>   <前钱包:.2f> <后钱包:.2f> <盈亏:.2f>"
func reportLine(entryTime, exitTime int64, entryPrice, exitPrice, walletBefore, walletAfter decimal.Decimal) string {
	return fmt.Sprintf("%s %s   %s %s   %s %s %s",
		time.Unix(entryTime, 0).UTC().Format(time.RFC3339),
		time.Unix(exitTime, 0).UTC().Format(time.RFC3339),
		entryPrice.StringFixed(3),
		exitPrice.StringFixed(3),
		walletBefore.StringFixed(2),
		walletAfter.StringFixed(2),
		walletAfter.Sub(walletBefore).StringFixed(2),
	)
}

// dayMarker 每个回测日结束后的分隔行
func dayMarker(day int) string {
	return fmt.Sprintf("Day %d", day)
}
