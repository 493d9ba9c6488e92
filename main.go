package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"billing-reports/internal/audit"
	"billing-reports/internal/auth"
	"billing-reports/internal/observability/metrics"
	"billing-reports/internal/reports/application"
	"billing-reports/internal/reports/infrastructure/billingapi"
	"billing-reports/internal/reports/interfaces"
	reporthttp "billing-reports/internal/reports/interfaces/http"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	} else {
		logger.Printf("DATABASE_URL not set, audit logging disabled")
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	reportConfig, err := application.LoadReportConfig()
	if err != nil {
		logger.Fatalf("report config error: %v", err)
	}

	source, err := billingapi.NewClient(cfg.BillingAPIBaseURL, cfg.BillingAPIToken)
	if err != nil {
		logger.Fatalf("billing api client error: %v", err)
	}

	renderers := map[string]application.Renderer{
		"xlsx": interfaces.XLSXRenderer{},
		"pdf":  interfaces.PDFRenderer{},
	}
	exportService, err := application.NewExportService(source, reportConfig, renderers, application.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("export service error: %v", err)
	}

	reportHandler, err := reporthttp.NewHandler(exportService, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports", reportHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	BillingAPIBaseURL string
	BillingAPIToken   string
	HTTPAddr          string
	JWTSecret         string
	DatabaseURL       string
}

func loadConfig() config {
	cfg := config{
		BillingAPIBaseURL: getenvDefault("BILLING_API_BASE_URL", ""),
		BillingAPIToken:   getenvDefault("BILLING_API_TOKEN", ""),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
	}
	if cfg.BillingAPIBaseURL == "" {
		log.Fatal("BILLING_API_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
