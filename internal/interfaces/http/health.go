package http

import (
	"net/http"
	"runtime"
	"time"

	"github.com/sawpanic/valuescan/internal/providers/guards"
)

// HealthHandler reports process health and fetch counters.
type HealthHandler struct {
	status    StatusSource
	counts    CountsSource
	startTime time.Time
	now       func() time.Time
}

func NewHealthHandler(status StatusSource, counts CountsSource) *HealthHandler {
	return &HealthHandler{status: status, counts: counts, startTime: time.Now(), now: time.Now}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string        `json:"status"` // "healthy" or "degraded"
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	RunID     string        `json:"run_id"`
	Phase     string        `json:"phase"`
	System    SystemInfo    `json:"system"`
	Fetch     guards.Counts `json:"fetch"`
}

// SystemInfo provides system-level information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	MemAlloc      uint64 `json:"mem_alloc_bytes"`
	NumGC         uint32 `json:"num_gc"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.gather())
}

func (h *HealthHandler) gather() HealthResponse {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := h.now()
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: now,
		Uptime:    now.Sub(h.startTime).Round(time.Second).String(),
		RunID:     h.status.RunID(),
		Phase:     string(h.status.Last().Type),
		System: SystemInfo{
			GoVersion:     runtime.Version(),
			NumGoroutines: runtime.NumGoroutine(),
			MemAlloc:      mem.Alloc,
			NumGC:         mem.NumGC,
		},
	}
	if h.counts != nil {
		resp.Fetch = h.counts.Counts()
		// Upstream is mostly failing: more than half of live calls exhausted.
		if resp.Fetch.Calls > 0 && resp.Fetch.Exhausted*2 > resp.Fetch.Calls {
			resp.Status = "degraded"
		}
	}
	return resp
}
