package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/auth"
	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/host"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// sessionIdleTimeout is how long an untouched study session survives.
const sessionIdleTimeout = 2 * time.Hour

// NewServer creates and configures the HTTP server for the adapty web UI.
func NewServer(db *sql.DB, cfg *config.Config, log *zap.Logger, version, bind string, port int) *http.Server {
	h := newHandlers(db, cfg, log, version)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv.RegisterOnShutdown(cancel)
	go h.pruneLoop(ctx)

	return srv
}

func newHandlers(db *sql.DB, cfg *config.Config, log *zap.Logger, version string) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}

	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatal("failed to create template sub-FS", zap.Error(err))
	}

	return &Handlers{
		db:       db,
		cfg:      cfg,
		log:      log,
		renderer: NewRenderer(templateSub, version, log),
		sessions: host.NewRegistry(log),
		tokens:   auth.NewTokens(),
	}
}

func (h *Handlers) routes() http.Handler {
	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		h.log.Fatal("failed to create static sub-FS", zap.Error(err))
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/decks", http.StatusFound)
	})
	mux.HandleFunc("GET /login", h.HandleLoginPage)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.HandleLogout)
	mux.HandleFunc("GET /decks", h.HandleDecks)
	mux.HandleFunc("POST /decks/{id}/study", h.HandleStartStudy)
	mux.HandleFunc("GET /study/{sid}", h.HandleStudy)
	mux.HandleFunc("POST /study/{sid}/{intent}", h.HandleIntent)
	mux.HandleFunc("GET /settings", h.HandleSettingsPage)
	mux.HandleFunc("POST /settings", h.HandleSettings)
	mux.HandleFunc("POST /settings/preset", h.HandlePreset)
	mux.HandleFunc("GET /theme.css", h.HandleTheme)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(h.requireLogin(mux))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// requireLogin redirects to /login unless the request carries a valid token.
// It is a pass-through when require_login is off.
func (h *Handlers) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.cfg == nil || !h.cfg.RequireLogin || isPublicPath(r.URL.Path) || h.loggedIn(r) {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func isPublicPath(p string) bool {
	return p == "/login" || p == "/theme.css" || strings.HasPrefix(p, "/static/")
}

// pruneLoop drops idle study sessions until ctx is done.
func (h *Handlers) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sessions.Prune(sessionIdleTimeout)
		}
	}
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("adapty UI running", zap.String("url", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
