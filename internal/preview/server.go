package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	appcfg "github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/logfields"
)

// BuildFunc rebuilds the site into the output directory.
type BuildFunc func(ctx context.Context) error

// Server runs the local preview: an HTTP file server over the output tree
// plus a watcher that rebuilds on content changes.
type Server struct {
	cfg            *appcfg.Config
	outputDir      string
	build          BuildFunc
	metricsHandler http.Handler
	addr           net.Addr
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithMetricsHandler serves h on /metrics instead of the default registry.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.metricsHandler = h }
}

// NewServer constructs a preview server. build is invoked once up front and
// again after every debounced change.
func NewServer(cfg *appcfg.Config, outputDir string, build BuildFunc, opts ...ServerOption) *Server {
	s := &Server{
		cfg:            cfg,
		outputDir:      outputDir,
		build:          build,
		metricsHandler: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound listen address once Run has started.
func (s *Server) Addr() net.Addr { return s.addr }

// Handler returns the preview HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.outputDir)))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run builds the site, starts the watcher, and serves until the context is
// canceled. Rebuild failures are logged and the previous output stays up.
func (s *Server) Run(ctx context.Context) error {
	if err := s.build(ctx); err != nil {
		return err
	}

	rebuild := func() {
		slog.Info("Change detected, rebuilding")
		if err := s.build(ctx); err != nil {
			slog.Error("Rebuild failed, serving previous output", logfields.Error(err))
		}
	}
	debounce := NewDebouncer(s.cfg.QuietWindow(), rebuild)
	defer debounce.Stop()

	watcher, err := NewWatcher(s.cfg.ContentDir, debounce, appcfg.DefaultFileName)
	if err != nil {
		return err
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Watcher stopped", logfields.Error(err))
		}
	}()

	listener, err := net.Listen("tcp", s.cfg.Preview.Addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr()

	server := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Preview server listening",
		slog.String("addr", "http://"+s.addr.String()),
		logfields.Path(s.outputDir))

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
