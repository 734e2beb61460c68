package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/aulavision/aulavision-lms/internal/api/http"
	"github.com/aulavision/aulavision-lms/internal/attention"
	auth "github.com/aulavision/aulavision-lms/internal/auth/middleware"
	"github.com/aulavision/aulavision-lms/internal/catalog"
	"github.com/aulavision/aulavision-lms/internal/config"
	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/db"
	"github.com/aulavision/aulavision-lms/internal/evaluation"
	"github.com/aulavision/aulavision-lms/internal/genai"
	"github.com/aulavision/aulavision-lms/internal/rbac"
	"github.com/aulavision/aulavision-lms/internal/recommend"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores ---
	catalogStore := catalog.NewStore(dbh)
	attentionStore := attention.NewStore(dbh)
	d2rStore := d2r.NewStore(dbh)
	evalStore := evaluation.NewStore(dbh)
	recStore := recommend.NewStore(dbh)

	// --- Generation client (constructed here, injected everywhere) ---
	genClient := genai.NewHTTPClient(genai.Options{
		BaseURL:    cfg.GenAIBaseURL,
		APIKey:     cfg.GenAIAPIKey,
		Model:      cfg.GenAIModel,
		Timeout:    time.Duration(cfg.GenAITimeoutSec) * time.Second,
		MaxRetries: cfg.GenAIRetries,
	})
	if !genClient.Available() {
		log.Printf("no GENAI_API_KEY set: evaluations and recommendations use local generation only")
	}
	generator := evaluation.NewGenerator(genClient)
	fanout := recommend.NewFanout(genClient, recStore)

	evalDeps := api.EvaluationDeps{
		Catalog:     catalogStore,
		Attention:   attentionStore,
		D2R:         d2rStore,
		Evaluations: evalStore,
		Generator:   generator,
		Fanout:      fanout,
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second)) // generation calls are slow

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Attention recorder
		pr.With(rbac.Require("attention:record")).
			Post("/attention/sessions", api.RecordAttentionSessionHandler(attentionStore, catalogStore))
		pr.With(rbac.Require("attention:view-own")).
			Get("/attention/sessions", api.ListAttentionSessionsHandler(attentionStore))
		pr.With(rbac.Require("attention:view-own")).
			Get("/attention/sessions/{sessionID}", api.GetAttentionSessionHandler(attentionStore))
		pr.With(rbac.Require("attention:view-own")).
			Get("/attention/summary", api.AttentionSummaryHandler(attentionStore))

		// D2-R concentration test
		pr.With(rbac.Require("d2r:submit")).
			Post("/d2r/results", api.CreateD2RResultHandler(d2rStore))
		pr.With(rbac.Require("d2r:view-own")).
			Get("/d2r/results", api.ListD2RResultsHandler(d2rStore))
		pr.With(rbac.Require("d2r:view-own")).
			Get("/d2r/results/{resultID}", api.GetD2RResultHandler(d2rStore))

		// Adaptive evaluations
		pr.With(rbac.Require("evaluation:generate")).
			Post("/evaluations/generate", api.GenerateEvaluationHandler(evalDeps))
		pr.With(rbac.Require("evaluation:submit")).
			Post("/evaluations/{evaluationID}/submit", api.SubmitEvaluationHandler(evalDeps))
		pr.With(rbac.Require("evaluation:view-own")).
			Get("/evaluations/history", api.EvaluationHistoryHandler(evalStore))
		pr.With(rbac.Require("evaluation:view-own")).
			Get("/evaluations/{evaluationID}", api.GetEvaluationHandler(evalStore))

		// Recommendations + profile
		pr.With(rbac.Require("recommendation:view-own")).
			Get("/recommendations", api.ListRecommendationsHandler(recStore))
		pr.With(rbac.Require("recommendation:mark-seen")).
			Post("/recommendations/{recommendationID}/seen", api.MarkRecommendationSeenHandler(recStore))
		pr.With(rbac.Require("profile:view-own")).
			Get("/profile/insights", api.ProfileInsightsHandler(d2rStore, attentionStore))

		// Catalog
		pr.With(rbac.Require("catalog:view")).
			Get("/courses", api.ListCoursesHandler(catalogStore))
		pr.With(rbac.Require("catalog:write")).
			Post("/courses", api.CreateCourseHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).
			Get("/courses/{courseID}/modules", api.ListModulesHandler(catalogStore))
		pr.With(rbac.Require("catalog:write")).
			Post("/courses/{courseID}/modules", api.CreateModuleHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).
			Get("/resources", api.ListResourcesHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).
			Get("/resources/{resourceID}", api.GetResourceHandler(catalogStore))
		pr.With(rbac.Require("catalog:write")).
			Post("/resources", api.CreateResourceHandler(catalogStore))
		pr.With(rbac.Require("catalog:write")).
			Delete("/resources/{resourceID}", api.DeleteResourceHandler(catalogStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", 503)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
