package controllers

import (
	"context"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"portal/internal/structures"
	"portal/internal/treestore"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthController struct {
	store     treestore.Store
	driver    string
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Store         string  `json:"store"`
	StoreError    string  `json:"store_error,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Store:         hc.driver,
	}
	status := http.StatusOK
	if checker, ok := hc.store.(healthChecker); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := checker.Health(ctx); err != nil {
			resp.Status = "degraded"
			resp.StoreError = "store unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store treestore.Store, conf *structures.Config) *HealthController {
	return &HealthController{
		store:     store,
		driver:    conf.Store.Driver,
		startTime: time.Now(),
	}
}
