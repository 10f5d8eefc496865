package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agencydesk/internal/audit"
	"agencydesk/internal/demo"
	"agencydesk/internal/generate"
	"agencydesk/internal/handlers"
	"agencydesk/internal/handlers/api"
	"agencydesk/internal/leads"
	"agencydesk/internal/middleware"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/ratelimit"
	"agencydesk/internal/report"
)

// Services are the dependencies the routes are built from.
type Services struct {
	Store     api.Store
	Pinger    handlers.Pinger
	Router    *llm.Router
	Prompts   *prompts.Catalogue
	Auditor   *audit.Auditor
	Generator *generate.Generator
	Leads     *leads.Service
	Demo      *demo.Service
	Renderer  *report.Renderer
	Limiter   *ratelimit.Limiter
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(svc Services) {
	log := s.Logger

	// Health checks and metrics sit outside /api: no rate limit, no API key.
	kubeHealth := handlers.NewKubeHealthHandler(svc.Pinger, log)
	s.App.Get("/healthz", kubeHealth.Liveness)
	s.App.Get("/readyz", kubeHealth.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg.APIKey, log, "/api/health")
	if !authMiddleware.Enabled() {
		log.Info("API_KEY not set; /api routes do not require authentication")
	}

	// Initialize handlers
	clientHandler := api.NewClientHandler(svc.Store, log)
	assetHandler := api.NewAssetHandler(svc.Store, log)
	auditHandler := api.NewAuditHandler(svc.Store, svc.Auditor, svc.Router, s.Cfg, log)
	generateHandler := api.NewGenerateHandler(svc.Generator, log)
	leadHandler := api.NewLeadHandler(svc.Leads, log)
	demoHandler := api.NewDemoHandler(svc.Demo, s.Cfg.IsDev(), log)
	planHandler := api.NewPlanHandler(svc.Router, svc.Prompts, log)
	exportHandler := api.NewExportHandler(svc.Renderer, log)
	healthHandler := api.NewHealthHandler(s.Cfg)

	group := s.App.Group("/api")
	if svc.Limiter != nil {
		group.Use(svc.Limiter.Middleware())
	}
	group.Use(authMiddleware.RequireAPIKey)

	group.Get("/health", healthHandler.Health)

	// Records
	group.Get("/clients", clientHandler.List)
	group.Post("/clients", clientHandler.Create)
	group.Get("/clients/:id", clientHandler.Get)
	group.Get("/client-assets", assetHandler.List)
	group.Post("/client-assets", assetHandler.Create)
	group.Get("/client-assets/:id", assetHandler.Get)
	group.Delete("/client-assets/:id", assetHandler.Delete)
	group.Get("/audits", auditHandler.List)
	group.Post("/audits", auditHandler.Create)

	// Audits, plans and reports
	group.Get("/deep-audit", auditHandler.Status)
	group.Post("/deep-audit", auditHandler.DeepAudit)
	group.Get("/execution-plan", planHandler.Formats)
	group.Post("/execution-plan", planHandler.Create)
	group.Post("/export-report", exportHandler.Export)

	// Demo asset
	group.Post("/demo/create-audit-asset", demoHandler.CreateAuditAsset)
	group.Post("/demo/cleanup", demoHandler.Cleanup)

	// Keywords
	group.Post("/keywords", generateHandler.Keywords)
	group.Post("/keyword-metrics", generateHandler.KeywordMetrics)
	group.Post("/keyword-suite", generateHandler.KeywordSuite)
	group.Post("/keyword-cluster", generateHandler.KeywordCluster)
	group.Post("/keyword-research", generateHandler.KeywordResearch)

	// Leads
	group.Post("/lead-generator", leadHandler.Generate)
	group.Post("/lead-enrich", leadHandler.Enrich)

	// Generated copy
	group.Post("/content/generate", generateHandler.Content)
	group.Post("/press-release", generateHandler.PressRelease)
	group.Post("/sales/generate", generateHandler.Sales)
	group.Post("/lelandize", generateHandler.Lelandize)
	group.Post("/tone-adjust", generateHandler.ToneAdjust)
}
