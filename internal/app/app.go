// Package app wires configuration, storage, clients, and services into a
// single application core shared by cmd/sika-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/accraquant/sika/internal/clients/gse"
	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/services/alert"
	"github.com/accraquant/sika/internal/services/backtest"
	"github.com/accraquant/sika/internal/services/jobrunner"
	"github.com/accraquant/sika/internal/services/market"
	"github.com/accraquant/sika/internal/services/portfolio"
	"github.com/accraquant/sika/internal/services/watchlist"
	"github.com/accraquant/sika/internal/storage/surrealdb"
	"github.com/accraquant/sika/internal/valuation"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	FeedClient       interfaces.MarketFeedClient
	MarketService    interfaces.MarketService
	PortfolioService interfaces.PortfolioService
	AlertService     interfaces.AlertService
	BacktestService  interfaces.BacktestService
	WatchlistService interfaces.WatchlistService
	JobRunner        *jobrunner.Runner
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be
// empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: explicit path, SIKA_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("SIKA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sika.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sika.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	feedClient := gse.NewClient(
		gse.WithBaseURL(config.Clients.GSE.BaseURL),
		gse.WithLogger(logger),
		gse.WithRateLimit(config.Clients.GSE.RateLimit),
		gse.WithTimeout(config.Clients.GSE.GetTimeout()),
	)

	marketService := market.NewService(storageManager, feedClient, logger, config.Jobs.GetSyncInterval())
	portfolioService := portfolio.NewService(storageManager, logger)
	alertService := alert.NewService(storageManager, logger)
	backtestService := backtest.NewService(storageManager, valuation.NewSimulator(nil), logger)
	watchlistService := watchlist.NewService(storageManager, logger)

	runner := jobrunner.NewRunner(marketService, alertService, backtestService, storageManager, logger, config.Jobs)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		FeedClient:       feedClient,
		MarketService:    marketService,
		PortfolioService: portfolioService,
		AlertService:     alertService,
		BacktestService:  backtestService,
		WatchlistService: watchlistService,
		JobRunner:        runner,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop the job runner, then close storage.
func (a *App) Close() {
	if a.JobRunner != nil {
		a.JobRunner.Stop()
		a.JobRunner = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
