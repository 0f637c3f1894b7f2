package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trailbot/trader"
)

// TradeEntry 一笔已平仓交易的落盘记录
type TradeEntry struct {
	Timestamp time.Time    `json:"timestamp"` // 落盘时间
	Seq       int          `json:"seq"`       // 进程内序号
	Trade     trader.Trade `json:"trade"`
}

// Statistics 交易台账统计
type Statistics struct {
	TotalTrades int             `json:"total_trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	WinRate     float64         `json:"win_rate"` // 0-100
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// TradeLogger 交易日志记录器
// 每笔平仓交易写一个独立的JSON文件，文件名自带时间戳和序号，
// 查询按文件名排序即按时间排序
type TradeLogger struct {
	logDir string
	mu     sync.Mutex
	seq    int
}

// NewTradeLogger 创建交易日志记录器
func NewTradeLogger(logDir string) *TradeLogger {
	if logDir == "" {
		logDir = "trade_logs"
	}

	// 日志包含余额与盈亏，目录和文件都只允许所有者访问
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Printf("⚠ 创建日志目录失败: %v\n", err)
	}
	if err := os.Chmod(logDir, 0700); err != nil {
		fmt.Printf("⚠ 设置日志目录权限失败: %v\n", err)
	}

	return &TradeLogger{logDir: logDir}
}

// LogTrade 记录一笔已平仓交易
func (l *TradeLogger) LogTrade(t trader.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := TradeEntry{
		Timestamp: time.Now(),
		Seq:       l.seq,
		Trade:     t,
	}

	// 文件名：trade_YYYYMMDD_HHMMSS_seqN.json
	filename := fmt.Sprintf("trade_%s_seq%d.json",
		entry.Timestamp.Format("20060102_150405"),
		entry.Seq)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化交易记录失败: %w", err)
	}

	if err := os.WriteFile(filepath.Join(l.logDir, filename), data, 0600); err != nil {
		return fmt.Errorf("写入交易记录失败: %w", err)
	}
	return nil
}

// GetLatestTrades 获取最近N笔交易（按时间正序：从旧到新）
func (l *TradeLogger) GetLatestTrades(n int) ([]*TradeEntry, error) {
	files, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, fmt.Errorf("读取日志目录失败: %w", err)
	}

	// 文件名包含精确时间戳和序号，按文件名倒序即最新在前
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() > files[j].Name()
	})

	var entries []*TradeEntry
	for i := 0; i < len(files) && len(entries) < n; i++ {
		if files[i].IsDir() {
			continue
		}
		entry, err := l.readEntry(files[i].Name())
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	// 反转为时间正序
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// GetTradesByDate 获取指定日期的所有交易
func (l *TradeLogger) GetTradesByDate(date time.Time) ([]*TradeEntry, error) {
	pattern := filepath.Join(l.logDir, fmt.Sprintf("trade_%s_*.json", date.Format("20060102")))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("查找日志文件失败: %w", err)
	}
	sort.Strings(files)

	var entries []*TradeEntry
	for _, f := range files {
		entry, err := l.readEntry(filepath.Base(f))
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CleanOldTrades 清理N天前的旧记录
func (l *TradeLogger) CleanOldTrades(days int) error {
	cutoff := time.Now().AddDate(0, 0, -days)

	files, err := os.ReadDir(l.logDir)
	if err != nil {
		return fmt.Errorf("读取日志目录失败: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(l.logDir, file.Name())); err != nil {
				fmt.Printf("⚠ 删除旧记录失败 %s: %v\n", file.Name(), err)
			}
		}
	}
	return nil
}

// GetStatistics 汇总全部落盘交易的胜率与总盈亏
func (l *TradeLogger) GetStatistics() (*Statistics, error) {
	files, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, fmt.Errorf("读取日志目录失败: %w", err)
	}

	stats := &Statistics{TotalProfit: decimal.Decimal{}}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		entry, err := l.readEntry(file.Name())
		if err != nil {
			continue
		}
		stats.TotalTrades++
		if entry.Trade.Profit.IsPositive() {
			stats.Wins++
		} else {
			stats.Losses++
		}
		stats.TotalProfit = stats.TotalProfit.Add(entry.Trade.Profit)
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalTrades) * 100
	}
	return stats, nil
}

func (l *TradeLogger) readEntry(name string) (*TradeEntry, error) {
	data, err := os.ReadFile(filepath.Join(l.logDir, name))
	if err != nil {
		return nil, err
	}
	var entry TradeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
