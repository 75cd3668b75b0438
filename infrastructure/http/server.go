package http

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"userdesk/frontend/adminUsers/view"
	"userdesk/infrastructure/audit"
	"userdesk/infrastructure/cache"
	"userdesk/infrastructure/config"
	"userdesk/infrastructure/sqlite"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB        *sqlite.DB
	Audit     *audit.Service
	UserCache *cache.UserCache
	Latency   time.Duration
	WasmDir   string
	PublicURL string
	Page      view.PageData
}

// NewServer creates a new http server from cfg.
func NewServer(cfg *config.Config, db *sqlite.DB, auditSvc *audit.Service) *Server {
	s := &Server{
		Addr:      cfg.Server.Addr,
		router:    chi.NewRouter(),
		DB:        db,
		Audit:     auditSvc,
		UserCache: cache.NewUserCache(),
		Latency:   cfg.GetLatency(),
		WasmDir:   cfg.Server.WasmDir,
		PublicURL: cfg.Server.PublicURL,
		Page: view.PageData{
			Title:         "Users",
			APIURL:        cfg.Screen.APIURL,
			WasmURL:       "/wasm",
			PageSize:      cfg.Screen.PageSize,
			SearchDelayMS: cfg.GetSearchDelay().Milliseconds(),
		},
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
		},
	}
	if d := cfg.GetShutdownTimeout(); d > 0 {
		ShutdownTimeout = d
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/", view.ScreenPageQueryHandler(s.Page))

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	if s.WasmDir != "" {
		s.router.Handle("/wasm/*", http.StripPrefix("/wasm/", http.FileServer(http.Dir(s.WasmDir))))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.CORSMiddleware)
		r.Use(s.LatencyMiddleware)
		s.RegisterUserRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	s.Addr = s.ln.Addr().String()
	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server stopped", slog.Any("err", err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
