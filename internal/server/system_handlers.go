package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aristath/qualitycore/internal/database"
	"github.com/aristath/qualitycore/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process and storage status
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	jobs      JobLister
	databases []*database.DB
	startedAt time.Time
}

// DatabaseStatus is the health of one database
type DatabaseStatus struct {
	Name    string          `json:"name"`
	Healthy bool            `json:"healthy"`
	Error   string          `json:"error,omitempty"`
	Stats   *database.Stats `json:"stats,omitempty"`
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string                `json:"status"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	Goroutines    int                   `json:"goroutines"`
	DataDirMB     float64               `json:"data_dir_mb"`
	Databases     []DatabaseStatus      `json:"databases"`
	Jobs          []scheduler.JobStatus `json:"jobs"`
	Timestamp     string                `json:"timestamp"`
}

// NewSystemHandlers creates system handlers. nil databases and a nil job lister are allowed.
func NewSystemHandlers(log zerolog.Logger, dataDir string, jobs JobLister, databases ...*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		jobs:      jobs,
		databases: databases,
		startedAt: time.Now(),
	}
}

// HandleSystemStatus returns process, database and scheduler status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		DataDirMB:     h.getDirSize(h.dataDir),
		Databases:     h.checkDatabases(r.Context()),
		Jobs:          []scheduler.JobStatus{},
		Timestamp:     time.Now().Format(time.RFC3339),
	}
	if h.jobs != nil {
		response.Jobs = h.jobs.Jobs()
	}
	for _, db := range response.Databases {
		if !db.Healthy {
			response.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) checkDatabases(ctx context.Context) []DatabaseStatus {
	out := make([]DatabaseStatus, 0, len(h.databases))
	for _, db := range h.databases {
		if db == nil {
			continue
		}
		status := DatabaseStatus{Name: db.Name(), Healthy: true}
		if err := db.HealthCheck(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		if stats, err := db.GetStats(); err == nil {
			status.Stats = stats
		}
		out = append(out, status)
	}
	return out
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages.
// The CPU sample is taken over 100ms to keep the call responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
