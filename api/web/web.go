package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"SalesPulse/api"
	"SalesPulse/api/dash/reports"
	"SalesPulse/api/ingest"
	"SalesPulse/api/master"
	"SalesPulse/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WebService owns the HTTP server and implements the managed-service
// lifecycle so the app manager can start and stop it with the rest.
type WebService struct {
	config map[string]interface{}
	db     *sql.DB
	pool   *pgxpool.Pool
	srv    *http.Server
}

func NewWebService(cfg map[string]interface{}, db *sql.DB, pool *pgxpool.Pool) serviceiface.Service {
	return &WebService{config: cfg, db: db, pool: pool}
}

func (s *WebService) Name() string { return "web" }

func (s *WebService) Start() error {
	port := ""
	if v, ok := s.config["port"]; ok {
		port = fmt.Sprintf("%v", v)
	}
	if env := os.Getenv("PORT"); env != "" {
		port = env
	}
	if port == "" {
		port = "5001"
	}

	s.srv = &http.Server{
		Addr:    ":" + port,
		Handler: NewRouter(s.db, s.pool),
	}
	go func() {
		api.LogInfo("HTTP server listening on :" + port)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			api.LogError("HTTP server stopped: " + err.Error())
		}
	}()
	return nil
}

func (s *WebService) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// NewRouter wires the full API surface. Reporting and ingestion run on the
// pgx pool; the maintenance masters use the database/sql handle.
func NewRouter(db *sql.DB, pool *pgxpool.Pool) *mux.Router {
	r := mux.NewRouter()
	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/health", ingest.HealthCheck(pool)).Methods(http.MethodGet)

	apiRouter.HandleFunc("/upload", ingest.UploadWorkbook(pool)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/uploads", ingest.GetUploadHistory(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/uploads/{id}", ingest.DeleteUploadHandler(pool)).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/months", ingest.GetAvailableMonths(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/years", ingest.GetAvailableYears(pool)).Methods(http.MethodGet)

	apiRouter.HandleFunc("/reports/comparison-sales", reports.ComparisonSales(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/comparison-production", reports.ComparisonProduction(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/category-breakdown", reports.CategoryBreakdown(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/yoy", reports.YoYGrowth(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/mom", reports.MoMGrowth(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/by-channel", reports.ByChannel(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/cost", reports.GetCost(pool)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports/cost", reports.UpsertCost(pool)).Methods(http.MethodPut)

	apiRouter.HandleFunc("/categories", master.GetCategories(db)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/categories", master.CreateCategory(db)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/categories/{id}", master.UpdateCategory(db)).Methods(http.MethodPut)
	apiRouter.HandleFunc("/categories/{id}", master.DeleteCategory(db)).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/products", master.GetProducts(db)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/products", master.CreateProduct(db)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/products/{id}", master.UpdateProduct(db)).Methods(http.MethodPut)
	apiRouter.HandleFunc("/products/{id}", master.DeleteProduct(db)).Methods(http.MethodDelete)

	return r
}
