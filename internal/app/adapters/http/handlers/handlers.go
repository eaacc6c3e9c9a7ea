package handlers

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"

	"twason/internal/app/ports"
	"twason/pkg/logger"
)

type Handlers struct {
	log     logger.Logger
	stats   ports.StatsPort
	channel string
	started time.Time
}

func New(log logger.Logger, stats ports.StatsPort, channel string) *Handlers {
	return &Handlers{
		log:     log,
		stats:   stats,
		channel: channel,
		started: time.Now(),
	}
}

type Status struct {
	Channel    string      `json:"channel"`
	Uptime     string      `json:"uptime"`
	CPUPercent float64     `json:"cpu_percent"`
	MemoryMB   uint64      `json:"memory_mb"`
	Goroutines int         `json:"goroutines"`
	Stats      ports.Stats `json:"stats"`
}

func (h *Handlers) HealthzHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handlers) StatusHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	percent, err := cpu.Percent(0, false)
	if err != nil {
		h.log.Warn("Failed to read CPU usage", slog.String("error", err.Error()))
	}
	if len(percent) == 0 {
		percent = append(percent, 0)
	}

	c.JSON(http.StatusOK, Status{
		Channel:    h.channel,
		Uptime:     time.Since(h.started).Truncate(time.Second).String(),
		CPUPercent: percent[0],
		MemoryMB:   m.Sys / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		Stats:      h.stats.Stats(),
	})
}
