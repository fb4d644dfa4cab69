package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/janhofer/linemates/external/puckdata"
	"github.com/janhofer/linemates/internal/config"
	"github.com/janhofer/linemates/internal/infrastructure/repository/postgres"
	"github.com/janhofer/linemates/internal/interfaces/httpapi"
	idgen "github.com/janhofer/linemates/internal/platform/id"
	"github.com/janhofer/linemates/internal/platform/logging"
	"github.com/janhofer/linemates/internal/platform/resilience"
	"github.com/janhofer/linemates/internal/usecase"
)

// App bundles the wired HTTP server with everything that needs teardown.
type App struct {
	Server *http.Server

	db              *sqlx.DB
	analysisService *usecase.AnalysisService
	logger          *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := connectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	stateRepo := postgres.NewStateRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	goalRepo := postgres.NewGoalEventRepository(db)
	rawRepo := postgres.NewRawFeedRepository(db)

	var provider usecase.UpstreamProvider
	if cfg.PuckDataEnabled {
		provider = puckdata.NewClient(puckdata.ClientConfig{
			BaseURL:    cfg.PuckDataBaseURL,
			Token:      cfg.PuckDataToken,
			Timeout:    cfg.PuckDataTimeout,
			MaxRetries: cfg.PuckDataMaxRetries,
			CacheTTL:   cfg.PuckDataCacheTTL,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.PuckDataCircuitEnabled,
				FailureThreshold: cfg.PuckDataCircuitFailureCount,
				OpenTimeout:      cfg.PuckDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.PuckDataCircuitHalfOpenMaxReq,
			},
		})
	} else {
		logger.Warn("puckdata disabled, analysis triggers will be rejected", "reason", "PUCKDATA_ENABLED=false")
	}

	analysisService, err := usecase.NewAnalysisService(
		provider,
		stateRepo,
		ledgerRepo,
		goalRepo,
		rawRepo,
		idgen.NewRandomGenerator(),
		usecase.AnalysisConfig{
			StaleAfter:  cfg.AnalysisStaleAfter,
			WorkerCount: cfg.AnalysisWorkerCount,
		},
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build analysis service: %w", err)
	}

	matrixService := usecase.NewMatrixService(goalRepo, logger)
	handler := httpapi.NewHandler(analysisService, matrixService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		analysisService.Close()
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:          server,
		db:              db,
		analysisService: analysisService,
		logger:          logger,
	}, nil
}

// Close releases the analysis worker pool and the database connection. The
// HTTP server is shut down separately by the caller.
func (a *App) Close() {
	if a.analysisService != nil {
		a.analysisService.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)

	return db, nil
}
