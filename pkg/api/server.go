// Package api exposes the health check detail table over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/kekexiaoai/healthdetail/pkg/inspection"
)

const (
	DetailPath  = "/api/v1/health-check-detail"
	ColumnsPath = "/api/v1/health-check-detail/columns"
)

type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type ColumnsResponse struct {
	Name      string                `json:"name"`
	Columns   []inspection.Column   `json:"columns"`
	Arguments []inspection.Argument `json:"arguments"`
}

type Controller struct {
	pipeline *inspection.Pipeline
}

func NewController(p *inspection.Pipeline) *Controller {
	return &Controller{pipeline: p}
}

// GetDetail serves one complete page. Pipeline outcomes other than ok are
// still 200 with no rows.
func (c *Controller) GetDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	index := q.Get(inspection.ArgumentIndex)
	if index == "" {
		// 兼容小写参数名
		index = q.Get("index")
	}

	session := inspection.NewSession(c.pipeline)
	session.OnArgumentsProcessed(index)
	page := session.GetNextPage(r.Context())
	w.Header().Set("X-Outcome-Reason", string(session.LastReason()))
	respondWithJson(w, http.StatusOK, page)
}

func (c *Controller) GetColumns(w http.ResponseWriter, _ *http.Request) {
	session := inspection.NewSession(c.pipeline)
	respondWithJson(w, http.StatusOK, ColumnsResponse{
		Name:      session.Name(),
		Columns:   session.Columns(),
		Arguments: session.InputArguments(),
	})
}

func HandleLiveRequest(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// NewRouter registers the detail routes, liveness and metrics.
func NewRouter(c *Controller, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc(ColumnsPath, c.GetColumns).Methods(http.MethodGet)
	router.HandleFunc(DetailPath, c.GetDetail).Methods(http.MethodGet)
	router.HandleFunc("/live", HandleLiveRequest).Methods(http.MethodGet)
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithJson(w, http.StatusMethodNotAllowed, ErrorResponse{
			Status:  http.StatusMethodNotAllowed,
			Code:    "405",
			Message: "Method " + r.Method + " is not allowed",
		})
	})
	return router
}

// NewServer wraps the router with access logging, panic recovery and gzip.
func NewServer(addr string, router http.Handler) *http.Server {
	logger := log.StandardLogger()
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(logger), handlers.PrintRecoveryStack(false))(router)
	h = handlers.CombinedLoggingHandler(logger.WriterLevel(log.DebugLevel), h)

	return &http.Server{
		Handler:      handlers.CompressHandler(h),
		Addr:         addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
}

func respondWithJson(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
