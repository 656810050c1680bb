package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openlumen/rdm-gateway/internal/audit"
	"github.com/openlumen/rdm-gateway/internal/bridges/olad"
	"github.com/openlumen/rdm-gateway/internal/controller"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/config"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/database"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// BridgeHealth reports the state of the link to the olad shim.
// Satisfied by *olad.Bridge.
type BridgeHealth interface {
	Healthy() bool
	PendingCount() int
	LastHealth() (olad.HealthMessage, bool)
}

var _ BridgeHealth = (*olad.Bridge)(nil)

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Controller *controller.Controller
	AuditRepo  audit.Repository // optional: audit history endpoint
	Bridge     BridgeHealth     // optional: health and metrics detail
	DB         *database.DB     // optional: database stats in metrics
	Version    string
}

// Server is the HTTP API server for the RDM gateway.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	controller *controller.Controller
	auditRepo  audit.Repository
	bridge     BridgeHealth
	db         *database.DB
	version    string
	startTime  time.Time
	server     *http.Server
	hub        *Hub
	cancel     context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		controller: deps.Controller,
		auditRepo:  deps.AuditRepo,
		bridge:     deps.Bridge,
		db:         deps.DB,
		version:    deps.Version,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, wires the label
// resolver's events into the hub for real-time broadcast, and launches
// the HTTP listener in a background goroutine. The server can be
// stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Start listening in background
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// BroadcastLabelEvent relays a resolved-label event to subscribed
// WebSocket clients. Safe to call before Start; events arriving then
// are dropped.
func (s *Server) BroadcastLabelEvent(event controller.LabelEvent) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(ChannelLabelResolved, event)
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
