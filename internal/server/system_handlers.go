package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/taxfolio/internal/database"
)

// SystemHandlers serves process and host status for operational monitoring.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	paramsDB    *database.DB
}

// NewSystemHandlers creates system handlers.
func NewSystemHandlers(log zerolog.Logger, paramsDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		paramsDB:    paramsDB,
	}
}

// HandleStatus reports uptime, host resource usage and database health.
// GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}

	// Host metrics are best-effort; a probe failure is not a status failure
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_percent"] = vm.UsedPercent
		status["memory_used_mb"] = vm.Used / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	dbStatus := "ok"
	if err := h.paramsDB.HealthCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Parameter database health check failed")
		dbStatus = "error"
	}
	status["databases"] = map[string]string{
		h.paramsDB.Name(): dbStatus,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
