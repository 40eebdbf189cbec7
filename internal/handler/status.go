// Package handler exposes the read-only ops API: health, runtime status,
// recent sizing decisions and the persisted journal. There is no write
// surface; trading is driven solely by the feed.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/GoPolymarket/polycopy/internal/executor"
	"github.com/GoPolymarket/polycopy/internal/feed"
	"github.com/GoPolymarket/polycopy/internal/repository"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	monitor  *feed.Monitor
	exec     *executor.Executor
	journal  *repository.JournalRepo // nil without a database
	tracked  []string
	strategy string
	started  time.Time
}

func NewStatusHandler(monitor *feed.Monitor, exec *executor.Executor, journal *repository.JournalRepo, tracked []string, strategy string) *StatusHandler {
	return &StatusHandler{
		monitor:  monitor,
		exec:     exec,
		journal:  journal,
		tracked:  tracked,
		strategy: strategy,
		started:  time.Now(),
	}
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "polycopy"})
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"streaming":          h.monitor.Streaming(),
		"reconnect_attempts": h.monitor.Attempts(),
		"tracked_wallets":    h.tracked,
		"strategy":           h.strategy,
		"uptime_seconds":     int(time.Since(h.started).Seconds()),
	})
}

func (h *StatusHandler) Decisions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"decisions": h.exec.Recent()})
}

func (h *StatusHandler) JournalList(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal database not configured"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	trades, err := h.journal.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}
