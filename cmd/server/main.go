package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cares/internal/app"
	"cares/internal/catalog"
	"cares/internal/config"
	"cares/internal/generator"
	"cares/internal/service"
	"cares/internal/transport/rest"
	"cares/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	config.LoadDotEnv()
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Log generator settings
	log.Printf("AI Config:")
	log.Printf("  Provider:  %s", cfg.AI.Provider)
	log.Printf("  Model:     %s", cfg.AI.Model)
	log.Printf("  Timeout:   %s", cfg.AI.Timeout())
	if cfg.AI.IsEnabled() {
		log.Println("  API Key:   configured ✓")
	} else {
		log.Println("  API Key:   NOT SET (POST /assess will store scores only)")
	}
	log.Printf("Store driver: %s", cfg.Store.Driver)

	cat := catalog.Default()
	log.Printf("Catalog: %d questions, %d pillars", cat.Len(), len(cat.Pillars()))

	backends, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open backends:", err)
	}
	defer backends.Close()

	gen, err := generator.New(cfg.AI)
	if err != nil {
		log.Fatal("Failed to create generator:", err)
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	defer wsHub.Close()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.Auth)
	reportSvc := service.NewReportService(backends.ReportRepo, backends.ReportCache)
	assessmentSvc := service.NewAssessmentService(cat, gen, backends.ReportRepo, backends.ReportCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	assessmentSvc.SetBroadcaster(wsHub)

	proxies, err := cfg.RateLimit.ProxyNets()
	if err != nil {
		log.Fatal("Invalid rate limit config:", err)
	}

	container := &rest.Container{
		AuthService:       authSvc,
		AssessmentService: assessmentSvc,
		ReportService:     reportSvc,
		Catalog:           cat,
		RateLimiter:       backends.RateLimiter,
		WSHub:             wsHub,
		CORS:              cfg.CORS,
		RequireAdmin:      cfg.Auth.RequireForReports,
		TrustedProxies:    proxies,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if cfg.Auth.RequireForReports {
			log.Printf("Report auth: username=%s", cfg.Auth.AdminUsername)
		}
		log.Println("Endpoints:")
		log.Println("  POST /assess")
		log.Println("  GET  /questions")
		log.Println("  GET  /reports")
		log.Println("  GET  /reports/{id}")
		log.Println("  GET  /reports/{id}/pdf")
		log.Println("  POST /auth/login")
		log.Println("  WS   /ws/reports")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// the generator call can take up to its own timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.AI.Timeout()+5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
