package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"trailbot/backtest"
	"trailbot/logger"
	"trailbot/trader"
)

// Options API 服务配置
type Options struct {
	Addr        string
	JWTSecret   string
	CORSOrigins []string
}

// Server HTTP API 服务
// 回测接口同步执行，实盘状态接口只读，二者都不触碰调度循环的内部状态
type Server struct {
	router      *gin.Engine
	addr        string
	jwtSecret   string
	corsOrigins []string

	runner *backtest.Runner
	ctrl   *trader.Controller
	trades *logger.TradeLogger
}

// NewServer 构建 API 服务
// ctrl 在纯回测部署下可以为 nil，状态接口此时返回 404
func NewServer(opts Options, runner *backtest.Runner, ctrl *trader.Controller, trades *logger.TradeLogger) *Server {
	s := &Server{
		router:      gin.New(),
		addr:        opts.Addr,
		jwtSecret:   opts.JWTSecret,
		corsOrigins: opts.CORSOrigins,
		runner:      runner,
		ctrl:        ctrl,
		trades:      trades,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := s.router.Group("/api")
	auth.Use(s.authMiddleware())
	{
		auth.GET("/status", s.handleStatus)
		auth.GET("/trades", s.handleTrades)
		auth.GET("/stats", s.handleStats)
		auth.POST("/backtest/stop-order", s.handleBacktestStopOrder)
		auth.POST("/backtest/momentum", s.handleBacktestMomentum)
	}
}

// Run 阻塞运行 HTTP 服务
func (s *Server) Run() error {
	log.Info().Str("addr", s.addr).Msg("API server listening")
	return s.router.Run(s.addr)
}

// handleStatus 实盘控制器状态快照
func (s *Server) handleStatus(c *gin.Context) {
	if s.ctrl == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "live controller not running",
			"code":  "STATUS_NOT_READY",
		})
		return
	}

	st := s.ctrl.Status()
	c.JSON(http.StatusOK, gin.H{
		"state":    st.State,
		"order_id": st.OrderID,
		"ask_ref":  st.AskRef,
		"position": st.Position,
		"open":     st.Position.EntryTime != 0 && st.Position.Open(),
	})
}

// handleTrades 已落盘交易查询
// 默认返回最近N笔（limit 默认 20，上限 100）；带 date=YYYY-MM-DD 时
// 返回该UTC日的全部交易，忽略 limit
func (s *Server) handleTrades(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
				"code":  "INVALID_REQUEST",
			})
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	var date time.Time
	if v := c.Query("date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "date must be formatted as " + dateLayout,
				"code":  "INVALID_REQUEST",
			})
			return
		}
		date = d
	}

	if s.trades == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "trade log not configured",
			"code":  "TRADES_NOT_READY",
		})
		return
	}

	var (
		entries []*logger.TradeEntry
		err     error
	)
	if !date.IsZero() {
		entries, err = s.trades.GetTradesByDate(date)
	} else {
		entries, err = s.trades.GetLatestTrades(limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"code":  "TRADES_READ_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": entries})
}

// handleStats 全部落盘交易的胜率与总盈亏汇总
func (s *Server) handleStats(c *gin.Context) {
	if s.trades == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "trade log not configured",
			"code":  "TRADES_NOT_READY",
		})
		return
	}

	stats, err := s.trades.GetStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"code":  "STATS_READ_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}
