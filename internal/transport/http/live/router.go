package livehttp

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"strata/internal/oracle"
	"strata/internal/store/decisionlog"
)

// OracleHandler 供 LiveService 实现，以接收外部信号源推送。
type OracleHandler interface {
	ApplyOracle(ctx context.Context, raw string) (oracle.Update, error)
}

// Router 暴露实盘相关的查询接口。
type Router struct {
	Logs   *decisionlog.Store
	Status StatusProvider
	Oracle OracleHandler
	symbol string
}

// NewRouter 构造 live HTTP router。
func NewRouter(logs *decisionlog.Store, status StatusProvider, handler OracleHandler, symbol string) *Router {
	return &Router{Logs: logs, Status: status, Oracle: handler, symbol: symbol}
}

// Register 将 /api/live 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/status", r.handleStatus)
	group.GET("/decisions", r.handleDecisions)
	if r.Oracle != nil {
		group.POST("/oracle", r.handleOracle)
	}
}

func (r *Router) handleStatus(c *gin.Context) {
	if r.Status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "status provider not enabled"})
		return
	}
	c.JSON(http.StatusOK, r.Status.Status())
}

func (r *Router) handleDecisions(c *gin.Context) {
	if r.Logs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "decision log not enabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		symbol = r.symbol
	}
	records, err := r.Logs.Recent(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "count": len(records), "decisions": records})
}

func (r *Router) handleOracle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	update, err := r.Oracle.ApplyOracle(c.Request.Context(), string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":      update.State.String(),
		"confidence": update.Confidence.String(),
	})
}
