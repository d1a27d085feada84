package handler

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/worker"
)

// Snapshotter is the background persistence the system endpoints report on.
type Snapshotter interface {
	Status() worker.SnapshotStatus
	SaveNow(ctx context.Context) error
}

// SystemHandler reports runtime and persistence health.
type SystemHandler struct {
	snapshots Snapshotter
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(snapshots Snapshotter, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		snapshots: snapshots,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`

	Persistence worker.SnapshotStatus `json:"persistence"`
}

// GetStatus godoc
// GET /api/v1/system/status
// Returns runtime statistics and the state of the background saves.
func (h *SystemHandler) GetStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, h.collect())
}

// SaveNow godoc
// POST /api/v1/system/save
// Writes the workbook to storage immediately.
func (h *SystemHandler) SaveNow(c *gin.Context) {
	if err := h.snapshots.SaveNow(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("Manual save failed")
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"persistence": h.snapshots.Status()})
}

func (h *SystemHandler) collect() systemStatus {
	s := systemStatus{
		Timestamp:   time.Now().Unix(),
		Uptime:      formatDuration(time.Since(h.startTime)),
		GoVersion:   runtime.Version(),
		NumCPU:      runtime.NumCPU(),
		Persistence: h.snapshots.Status(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.Goroutines = runtime.NumGoroutine()
	s.HeapAlloc = ms.HeapAlloc
	s.HeapSys = ms.Sys
	s.NumGC = ms.NumGC

	s.AppRSSBytes, _ = readProcessRSS()
	return s
}

// readProcessRSS reads VmRSS from /proc/self/status. It fails off Linux.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			// Format: "VmRSS:     16384 kB"
			fields := strings.Fields(line)
			if len(fields) < 2 {
				break
			}
			val, _ := strconv.ParseUint(fields[1], 10, 64)
			return val * 1024, nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
