package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"banking-transfers/internal/account"
	"banking-transfers/internal/fraud"
	"banking-transfers/internal/stream"
	"banking-transfers/internal/transfer"
)

// Config holds the HTTP server configuration.
type Config struct {
	Addr        string
	ReadTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		ReadTimeout: 5 * time.Second,
	}
}

// Server is the HTTP surface over the transfer pipeline and account CRUD.
type Server struct {
	transfers *transfer.Service
	accounts  *account.Service
	scorer    *fraud.Scorer
	hub       *stream.Hub
	logger    *zap.Logger
	http      *http.Server
}

// New builds the router and the underlying http.Server. gatherer feeds the
// /metrics endpoint.
func New(cfg Config, transfers *transfer.Service, accounts *account.Service,
	scorer *fraud.Scorer, hub *stream.Hub, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		transfers: transfers,
		accounts:  accounts,
		scorer:    scorer,
		hub:       hub,
		logger:    logger,
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/transfers", s.handleTransfer).Methods(http.MethodPost)
	api.HandleFunc("/transfers/stream", s.handleStream).Methods(http.MethodGet)
	api.HandleFunc("/transfers/latest", s.handleLatestTransfers).Methods(http.MethodGet)
	api.HandleFunc("/transfers/account/{accountId}", s.handleAccountHistory).Methods(http.MethodGet)
	api.HandleFunc("/transfers/{id}", s.handleGetTransfer).Methods(http.MethodGet)

	api.HandleFunc("/fraud/suspicious", s.handleSuspicious).Methods(http.MethodGet)

	api.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/number/{number}", s.handleGetAccountByNumber).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", s.handleUpdateAccount).Methods(http.MethodPut)
	api.HandleFunc("/accounts/{id}/balance", s.handleBalance).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		ReadTimeout: cfg.ReadTimeout,
		// No WriteTimeout: the stream endpoint holds its connection open.
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
