package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tigerroll/weather-etl/pkg/batch/core/application/usecase"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// OpsServer serves /healthz and /metrics while the job runs on a schedule.
type OpsServer struct {
	addr     string
	jobName  string
	explorer usecase.JobExplorer
	gatherer prometheus.Gatherer
	server   *http.Server
}

// NewOpsServer creates an OpsServer. A nil gatherer leaves /metrics unrouted.
func NewOpsServer(addr, jobName string, explorer usecase.JobExplorer, gatherer prometheus.Gatherer) *OpsServer {
	s := &OpsServer{addr: addr, jobName: jobName, explorer: explorer, gatherer: gatherer}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *OpsServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.healthz)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type healthResponse struct {
	Status        string `json:"status"`
	Job           string `json:"job"`
	LastExecution string `json:"last_execution,omitempty"`
	LastStatus    string `json:"last_status,omitempty"`
	LastEndTime   string `json:"last_end_time,omitempty"`
}

func (s *OpsServer) healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Job: s.jobName}
	if s.explorer != nil {
		if je, err := s.explorer.GetLastJobExecution(r.Context(), s.jobName); err == nil && je != nil {
			resp.LastExecution = je.ID
			resp.LastStatus = je.Status.String()
			if je.EndTime != nil {
				resp.LastEndTime = je.EndTime.UTC().Format(time.RFC3339)
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Start listens on the configured address and serves in the background.
func (s *OpsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	logger.Infof("Ops server listening on %s.", ln.Addr())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Ops server stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server gracefully.
func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
