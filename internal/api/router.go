package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/websocket"
	"github.com/yegors/flight-overlay/pkg/logger"
)

// Router wires the API handlers, the websocket endpoint and the overlay page
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	static   *StaticFileHandler
	config   *config.Config
	logger   *logger.Logger
}

// NewRouter creates a new router
func NewRouter(frames *FrameCache, status StatusFunc, cfg *config.Config, wsServer *websocket.Server, loggerObj *logger.Logger) *Router {
	return &Router{
		handler:  NewHandler(frames, status, cfg, wsServer, loggerObj),
		wsServer: wsServer,
		static:   NewStaticFileHandler(cfg.Server.StaticFilesDir, loggerObj),
		config:   cfg,
		logger:   loggerObj.Named("router"),
	}
}

// Routes returns the HTTP handler for every endpoint
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)

	origins := rt.config.Server.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.handler.GetHealth)
		r.Get("/config", rt.handler.GetConfig)
		r.Get("/overlay", rt.handler.GetOverlay)
		r.Get("/track", rt.handler.GetTrack)
		r.Get("/snapshot", rt.handler.GetSnapshot)
	})

	if rt.wsServer != nil {
		r.Get("/ws", rt.wsServer.HandleConnection)
	}

	r.Handle("/*", rt.static)

	return r
}

func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		rt.logger.Debug("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("duration", time.Since(start)))
	})
}
