package rest

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"cares/internal/cache"
	"cares/internal/catalog"
	"cares/internal/config"
	"cares/internal/service"
	"cares/internal/transport/rest/handler"
	"cares/internal/transport/rest/middleware"
	"cares/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	AssessmentService *service.AssessmentService
	ReportService     *service.ReportService
	Catalog           *catalog.Catalog
	RateLimiter       cache.RateLimiter
	WSHub             *ws.Hub
	CORS              config.CORSConfig
	RequireAdmin      bool // guard /reports* and /ws/reports
	TrustedProxies    []*net.IPNet
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	cat := c.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	limiter := c.RateLimiter
	if limiter == nil {
		limiter = cache.AllowAll{}
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	reportHandler := handler.NewReportHandler(c.ReportService, cat)
	catalogHandler := handler.NewCatalogHandler(cat)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.RequireAdmin)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))
	r.Use(middleware.RequestID)

	// Public routes
	r.HandleFunc("/", handler.Root).Methods("GET")
	r.HandleFunc("/health", handler.Health).Methods("GET")
	r.HandleFunc("/questions", catalogHandler.Questions).Methods("GET", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	rateLimited := middleware.RateLimit(limiter, "assess", c.TrustedProxies)
	r.Handle("/assess", rateLimited(http.HandlerFunc(assessmentHandler.Assess))).Methods("POST", "OPTIONS")

	// WebSocket feed (token in query param when protected)
	r.HandleFunc("/ws/reports", wsHandler.ReportsWS).Methods("GET")

	// Report routes
	reports := r.PathPrefix("/reports").Subrouter()
	if c.RequireAdmin {
		reports.Use(authMW.RequireAdmin)
	}
	reports.HandleFunc("", reportHandler.List).Methods("GET", "OPTIONS")
	reports.HandleFunc("/{id}", reportHandler.Get).Methods("GET", "OPTIONS")
	reports.HandleFunc("/{id}/pdf", reportHandler.PDF).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	allowedMethods := cfg.AllowedMethods
	if allowedMethods == "" {
		allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	allowedHeaders := cfg.AllowedHeaders
	if allowedHeaders == "" {
		allowedHeaders = "Content-Type, Authorization"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
