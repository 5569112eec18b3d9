package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/dropzone/pkg/upload"
)

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the registry served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWriteTimeout bounds each write to a feed client. A client that
// stops reading is disconnected after this long.
// Default: DefaultWriteTimeout
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// Server exposes a widget's state over HTTP:
//
//	GET  /state    current snapshot as JSON
//	GET  /view     current view model as JSON
//	GET  /ws       WebSocket feed of snapshots
//	POST /reset    reset the widget
//	GET  /metrics  Prometheus metrics
//	GET  /healthz  liveness
type Server struct {
	widget   *upload.Widget
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	feed     *Feed
	router   chi.Router
	unsub    func()

	writeTimeout time.Duration

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates an inspector for w and subscribes to its transitions.
func New(w *upload.Widget, opts ...Option) *Server {
	s := &Server{
		widget:   w,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "inspect", "widget_id", w.ID())

	s.feed = NewFeed(func() Message {
		return s.stateMessage(w.State())
	})
	s.feed.SetWriteTimeout(s.writeTimeout)
	s.unsub = w.Subscribe(func(st upload.State) {
		s.feed.Publish(s.stateMessage(st))
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/state", s.handleState)
	r.Get("/view", s.handleView)
	r.Get("/ws", s.feed.HandleWebSocket)
	r.Post("/reset", s.handleReset)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// Handler returns the inspector's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Feed returns the WebSocket feed.
func (s *Server) Feed() *Feed {
	return s.feed
}

// Start listens on addr and serves in the background. It returns the
// address actually bound, which differs from addr when the port is 0.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("inspector stopped", "error", err)
		}
	}()

	s.logger.Info("inspector listening", "addr", ln.Addr().String())
	return ln.Addr().String(), nil
}

// Shutdown unsubscribes from the widget, disconnects feed clients and stops
// the HTTP server if it was started.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsub()

	s.feed.Publish(Message{Type: MessageTypeClosed})
	s.feed.Close()

	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) stateMessage(st upload.State) Message {
	view := upload.ViewOf(st, s.widget.Config())
	return Message{Type: MessageTypeState, State: &st, View: &view}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.widget.State())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.widget.View())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.widget.Reset()
	writeJSON(w, http.StatusOK, s.widget.State())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
