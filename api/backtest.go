package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"trailbot/backtest"
)

// BacktestRequest 回测请求体
// 日期为 UTC 日界，格式 YYYY-MM-DD，end 不含在回测范围内
type BacktestRequest struct {
	Pair        string          `json:"pair" binding:"required"`
	Start       string          `json:"start" binding:"required"`
	End         string          `json:"end" binding:"required"`
	WalletQuote decimal.Decimal `json:"wallet_quote"`
	TradeLimit  decimal.Decimal `json:"trade_limit"`
	TrailPct    decimal.Decimal `json:"trail_pct"`
	StopLossPct decimal.Decimal `json:"stop_loss_pct"`
	Strategy    string          `json:"strategy"`
}

const dateLayout = "2006-01-02"

func (r BacktestRequest) toConfig() (backtest.Config, error) {
	start, err := time.ParseInLocation(dateLayout, r.Start, time.UTC)
	if err != nil {
		return backtest.Config{}, err
	}
	end, err := time.ParseInLocation(dateLayout, r.End, time.UTC)
	if err != nil {
		return backtest.Config{}, err
	}
	return backtest.Config{
		Pair:        r.Pair,
		Start:       start,
		End:         end,
		WalletQuote: r.WalletQuote,
		TradeLimit:  r.TradeLimit,
		TrailPct:    r.TrailPct,
		StopLossPct: r.StopLossPct,
		Strategy:    r.Strategy,
	}, nil
}

// handleBacktestStopOrder 跟踪止损回测
func (s *Server) handleBacktestStopOrder(c *gin.Context) {
	s.runBacktest(c, s.runner.RunStopOrder)
}

// handleBacktestMomentum 动量回测
func (s *Server) handleBacktestMomentum(c *gin.Context) {
	s.runBacktest(c, s.runner.RunMomentum)
}

func (s *Server) runBacktest(c *gin.Context, run func(ctx context.Context, cfg backtest.Config) (*backtest.Result, error)) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "INVALID_REQUEST",
		})
		return
	}

	cfg, err := req.toConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "INVALID_REQUEST",
		})
		return
	}

	result, err := run(c.Request.Context(), cfg)
	if err != nil {
		log.Warn().Err(err).Str("pair", cfg.Pair).Msg("backtest failed")
		if result == nil {
			// 参数校验失败，回测未启动
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "INVALID_REQUEST",
			})
			return
		}
		// K线拉取中途失败，带回已产出的部分结果
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   err.Error(),
			"code":    "BACKTEST_FAILED",
			"partial": result,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
