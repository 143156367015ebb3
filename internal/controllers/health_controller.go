package controllers

import (
	"epd/internal/services"
	"epd/internal/vault/interfaces"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.ProfileServiceInterface
	usageLog  interfaces.UsageLogInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ProbeMs       float64 `json:"probe_ms"`
	Profiles      int     `json:"profiles"`
	UsageEvents   int     `json:"usage_events"`
	Keys          int     `json:"keys"`
}

// Health runs a real storage probe on every call: a full profile scan
// timed against the configured latency budget.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	health := hc.service.StorageHealth()
	status := "ok"
	if !health.IsHealthy {
		status = "degraded"
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        status,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		ProbeMs:       health.LatencyMs,
		Profiles:      health.ProfileCount,
		UsageEvents:   hc.usageLog.Count(),
		Keys:          health.KeyCount + hc.usageLog.Count(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.ProfileServiceInterface, usageLog interfaces.UsageLogInterface) *HealthController {
	return &HealthController{
		service:   service,
		usageLog:  usageLog,
		startTime: time.Now(),
	}
}
