package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/affectively-ai/aeon-nav/internal/config"
	"github.com/affectively-ai/aeon-nav/pkg/cache"
	"github.com/affectively-ai/aeon-nav/pkg/nav"
	"github.com/affectively-ai/aeon-nav/pkg/predict"
	"github.com/affectively-ai/aeon-nav/pkg/route"
	"github.com/affectively-ai/aeon-nav/pkg/skeleton"
	"github.com/affectively-ai/aeon-nav/pkg/speculation"
	"github.com/affectively-ai/aeon-nav/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a diagnostics server over a manifest",
		Long: `Start an HTTP server that exercises the navigation runtime
against a route manifest with generated session payloads.

Endpoints:
  GET /routes         compiled route table
  GET /resolve?path=  resolve a path against the table
  GET /sessions/*     prefetch and return the session payload for a path
  GET /skeleton/*     render the skeleton placeholder for a route
  GET /stats          cache and speculation statistics
  GET /metrics        Prometheus metrics

Examples:
  aeonnav serve
  aeonnav serve --config ./aeon.json --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to aeon.json (default: ./aeon.json if present)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to bind (default from aeon.json)")

	return cmd
}

func runServe(configPath string, port int) error {
	cfg, err := loadServeConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Serve.Port = port
	}

	defs, err := route.LoadManifestFile(cfg.ManifestPath())
	if err != nil {
		return err
	}
	matcher := route.NewMatcher()
	matcher.Reset(defs)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.MetricsConfig{Registry: registry})

	sessions := cache.NewSessionCache(
		cache.WithMaxSize(cfg.Cache.MaxSessions),
		cache.WithDefaultTTL(cfg.SessionTTL()),
		cache.WithMetrics(metrics.Cache()),
		cache.WithLogger(logger),
	)
	skeletons := cache.NewSkeletonCache(
		cache.WithSkeletonMaxSize(cfg.Cache.MaxSkeletons),
		cache.WithSkeletonTTL(cfg.SkeletonTTL()),
	)

	engine := nav.New(matcher, demoFetcher,
		nav.WithSessionCache(sessions),
		nav.WithSkeletonCache(skeletons),
		nav.WithModel(predict.NewModel(predict.WithWindow(cfg.Prediction.Window))),
		nav.WithSpeculation(speculation.NewController(nil,
			speculation.WithMaxPrefetch(cfg.Speculation.MaxPrefetch),
			speculation.WithMaxPrerender(cfg.Speculation.MaxPrerender),
			speculation.WithHoverDelay(cfg.HoverDelay()),
			speculation.WithLogger(logger),
		)),
		nav.WithPrefetchThreshold(cfg.Prediction.PrefetchThreshold),
		nav.WithPrefetchFanout(cfg.Prediction.PrefetchFanout),
		nav.WithLogger(logger),
		nav.WithMetrics(metrics),
	)

	srv := &diagServer{
		engine:   engine,
		matcher:  matcher,
		sessions: sessions,
		logger:   logger.With("component", "serve"),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(srv.logger))

	r.Get("/routes", srv.handleRoutes)
	r.Get("/resolve", srv.handleResolve)
	r.Get("/sessions/*", srv.handleSession)
	r.Get("/skeleton/*", srv.handleSkeleton)
	r.Get("/stats", srv.handleStats)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := cfg.ServeAddress()
	success("serving %d routes on http://%s", matcher.Len(), addr)
	info("manifest: %s", cfg.ManifestPath())
	return http.ListenAndServe(addr, r)
}

// loadServeConfig loads an explicit config file, falls back to ./aeon.json,
// and otherwise runs on defaults.
func loadServeConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if config.Exists(".") {
		return config.Load(".")
	}
	return config.New(), nil
}

// demoFetcher generates a synthetic session payload; the diagnostics
// server has no backend to call.
func demoFetcher(ctx context.Context, sessionID string) (any, error) {
	return map[string]any{
		"sessionId":   sessionID,
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"demo":        true,
	}, nil
}

type diagServer struct {
	engine   *nav.Engine
	matcher  *route.Matcher
	sessions *cache.SessionCache
	logger   *slog.Logger
}

func (s *diagServer) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.matcher.Definitions())
}

func (s *diagServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path query parameter"})
		return
	}
	m, ok := s.engine.Resolve(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route matches " + path})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *diagServer) handleSession(w http.ResponseWriter, r *http.Request) {
	href := "/" + chi.URLParam(r, "*")
	m, ok := s.engine.Resolve(href)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route matches " + href})
		return
	}

	if err := s.engine.Prefetch(r.Context(), href); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	entry, ok := s.sessions.Get(m.SessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session expired before read"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": entry.SessionID,
		"cachedAt":  entry.CachedAt,
		"payload":   entry.Payload,
	})
}

func (s *diagServer) handleSkeleton(w http.ResponseWriter, r *http.Request) {
	routePath := "/" + chi.URLParam(r, "*")

	node := defaultSkeleton()
	if hint, ok := s.engine.Skeletons().Get(routePath); ok {
		if n, isNode := hint.(*skeleton.Node); isNode {
			node = n
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(skeleton.RenderPage(node)))
}

func (s *diagServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache":       s.engine.CacheStats(),
		"speculation": s.engine.SpeculationStats(),
	})
}

// defaultSkeleton is the placeholder shown for routes without a cached
// layout hint: a heading line over a paragraph block.
func defaultSkeleton() *skeleton.Node {
	return &skeleton.Node{
		Type: "div",
		Meta: &skeleton.Meta{
			Shape:      skeleton.ShapeContainer,
			Dimensions: skeleton.Dimensions{Width: "100%", Padding: "16px", Gap: "12px"},
			Dynamic:    true,
		},
		Children: []skeleton.Child{
			{Node: &skeleton.Node{
				Type: "h1",
				Meta: &skeleton.Meta{
					Shape:      skeleton.ShapeTextLine,
					Dimensions: skeleton.Dimensions{Width: "40%", Height: "2em"},
					Dynamic:    true,
				},
			}},
			{Node: &skeleton.Node{
				Type: "p",
				Meta: &skeleton.Meta{
					Shape:   skeleton.ShapeTextBlock,
					Lines:   4,
					Dynamic: true,
				},
			}},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request with status and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
