package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/davidjspooner/dsflow/pkg/job"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/printkit/netdevice/internal/device"
	"github.com/printkit/netdevice/internal/discovery"
)

var pollHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "fleet_poll_duration_seconds",
	Help: "Duration of one device supply poll",
}, []string{"uri", "outcome"})

type Server struct {
	config *Config
	dctx   *discovery.Context
}

func NewServer(ctx context.Context, configPath string) (*Server, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	options, err := config.DiscoveryOptions()
	if err != nil {
		return nil, err
	}
	return &Server{
		config: config,
		dctx:   discovery.NewContext(options...),
	}, nil
}

type deviceInfo struct {
	URI      string `json:"uri"`
	Name     string `json:"name,omitempty"`
	Info     string `json:"info,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Devices runs both discovery sweeps and reports every printer they found.
func (s *Server) Devices(w http.ResponseWriter, r *http.Request) {
	found := make([]deviceInfo, 0)
	s.dctx.Discover(r.Context(), func(c *discovery.Candidate) bool {
		info := deviceInfo{URI: c.URI, Name: c.Name, Info: c.Info, DeviceID: c.DeviceID}
		if c.Address != nil {
			info.Address = c.Address.String()
		}
		found = append(found, info)
		return false
	}, logError)
	writeJSON(w, found)
}

type supplyReport struct {
	URI      string                `json:"uri"`
	Error    string                `json:"error,omitempty"`
	Status   string                `json:"status,omitempty"`
	Supplies []device.SupplyRecord `json:"supplies,omitempty"`
}

// FleetSupplies polls every configured device in parallel and reports status
// and supply levels per device. A device that fails to open reports its
// error instead of failing the whole request.
func (s *Server) FleetSupplies(w http.ResponseWriter, r *http.Request) {
	reports := make([]supplyReport, 0, len(s.config.Devices))
	lock := sync.Mutex{}

	executer := job.NewExecuter[string](log.Default())
	executer.Start(r.Context(), s.config.PollWorkers, func(ctx context.Context, uri string) error {
		report := s.pollDevice(ctx, uri)
		lock.Lock()
		defer lock.Unlock()
		reports = append(reports, report)
		return nil
	}, s.config.Devices)
	if err := executer.WaitForCompletion(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, reports)
}

func (s *Server) pollDevice(ctx context.Context, uri string) supplyReport {
	report := supplyReport{URI: uri}
	started := time.Now()
	d, err := device.Open(ctx, s.dctx, uri, "supply-poll", logError)
	if err != nil {
		report.Error = err.Error()
		pollHistogram.WithLabelValues(uri, "error").Observe(time.Since(started).Seconds())
		return report
	}
	defer d.Close()
	report.Status = d.Status(ctx).String()
	report.Supplies = d.Supplies(ctx, device.MaxSupplies)
	pollHistogram.WithLabelValues(uri, "ok").Observe(time.Since(started).Seconds())
	return report
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	e.Encode(v)
}

func logError(message string) {
	slog.Warn(message, "event", "device-error")
}
