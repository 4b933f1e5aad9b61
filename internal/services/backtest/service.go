// Package backtest manages strategy simulation runs: creation, queued
// execution, and chart rendering.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/valuation"
)

// Compile-time interface check
var _ interfaces.BacktestService = (*Service)(nil)

// Validation errors surfaced to handlers.
var (
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrUnknownRebalance = errors.New("unknown rebalance frequency")
	ErrNotOwner         = errors.New("backtest not owned by user")
	ErrNotTerminal      = errors.New("backtest is still pending or running")
	ErrNotCompleted     = errors.New("backtest has no results")
	ErrNotPending       = errors.New("backtest is not pending")
)

// Service implements BacktestService
type Service struct {
	storage   interfaces.StorageManager
	simulator *valuation.Simulator
	logger    *common.Logger
}

// NewService creates a new backtest service. A nil simulator gets a
// time-seeded one.
func NewService(storage interfaces.StorageManager, simulator *valuation.Simulator, logger *common.Logger) *Service {
	if simulator == nil {
		simulator = valuation.NewSimulator(nil)
	}
	return &Service{
		storage:   storage,
		simulator: simulator,
		logger:    logger,
	}
}

// CreateBacktest validates parameters, persists a pending run, and enqueues
// it for the job runner. The run executes asynchronously; poll GetBacktest
// for completion.
func (s *Service) CreateBacktest(ctx context.Context, userID string, params models.BacktestParams) (*models.Backtest, error) {
	for i, ticker := range params.Stocks {
		params.Stocks[i] = models.NormalizeTicker(ticker)
	}
	if params.Strategy == "" {
		params.Strategy = models.StrategyBuyAndHold
	}
	if params.RebalanceFrequency == "" {
		params.RebalanceFrequency = models.RebalanceMonthly
	}

	if err := valuation.ValidateParams(params); err != nil {
		return nil, err
	}
	if !models.ValidStrategy(params.Strategy) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, params.Strategy)
	}
	if !models.ValidRebalanceFrequency(params.RebalanceFrequency) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRebalance, params.RebalanceFrequency)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = fmt.Sprintf("%s %s", params.Strategy, time.Now().Format("2006-01-02 15:04"))
	}

	bt := &models.Backtest{
		UserID: userID,
		Name:   name,
		Params: params,
		Status: models.BacktestStatusPending,
	}
	if err := s.storage.BacktestStore().Create(ctx, bt); err != nil {
		return nil, fmt.Errorf("failed to create backtest: %w", err)
	}

	job := &models.Job{
		JobType:     models.JobTypeRunBacktest,
		Key:         bt.ID,
		Priority:    models.PriorityRunBacktest,
		MaxAttempts: 1,
	}
	if err := s.storage.JobQueueStore().Enqueue(ctx, job); err != nil {
		// The run stays pending; the next queue sweep or a manual re-run
		// can still pick it up.
		s.logger.Error().Str("backtest", bt.ID).Err(err).Msg("Failed to enqueue backtest job")
		return bt, nil
	}

	s.logger.Info().
		Str("backtest", bt.ID).
		Str("user", userID).
		Str("strategy", params.Strategy).
		Msg("Backtest queued")

	return bt, nil
}

// GetBacktest retrieves a run owned by the user
func (s *Service) GetBacktest(ctx context.Context, userID, id string) (*models.Backtest, error) {
	bt, err := s.storage.BacktestStore().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest: %w", err)
	}
	if bt.UserID != userID {
		return nil, ErrNotOwner
	}
	return bt, nil
}

// ListBacktests returns the user's runs, newest first
func (s *Service) ListBacktests(ctx context.Context, userID string, limit int) ([]*models.Backtest, error) {
	return s.storage.BacktestStore().List(ctx, userID, limit)
}

// DeleteBacktest removes a terminal run owned by the user. Pending and
// running backtests can't be deleted out from under the job runner.
func (s *Service) DeleteBacktest(ctx context.Context, userID, id string) error {
	bt, err := s.GetBacktest(ctx, userID, id)
	if err != nil {
		return err
	}
	if !bt.IsTerminal() {
		return ErrNotTerminal
	}
	return s.storage.BacktestStore().Delete(ctx, id)
}

// ExecuteBacktest runs a pending backtest to completion. Called by the job
// runner, not by handlers. A simulation failure marks the run failed and
// returns nil so the job isn't retried against bad parameters.
func (s *Service) ExecuteBacktest(ctx context.Context, id string) error {
	bt, err := s.storage.BacktestStore().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get backtest: %w", err)
	}
	if bt.Status != models.BacktestStatusPending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, id, bt.Status)
	}

	if err := s.storage.BacktestStore().UpdateStatus(ctx, id, models.BacktestStatusRunning); err != nil {
		return fmt.Errorf("failed to mark backtest running: %w", err)
	}

	results, err := s.simulator.Run(bt.Params)
	if err != nil {
		s.logger.Warn().Str("backtest", id).Err(err).Msg("Backtest simulation failed")
		if markErr := s.storage.BacktestStore().MarkFailed(ctx, id, err.Error()); markErr != nil {
			return fmt.Errorf("failed to mark backtest failed: %w", markErr)
		}
		return nil
	}

	if err := s.storage.BacktestStore().SaveResults(ctx, id, results); err != nil {
		return fmt.Errorf("failed to save backtest results: %w", err)
	}

	s.logger.Info().
		Str("backtest", id).
		Float64("final_value", results.Metrics.FinalValue).
		Float64("return_pct", results.Metrics.TotalReturnPct).
		Msg("Backtest completed")

	return nil
}

// RenderChart renders the performance series of a completed run as a PNG
func (s *Service) RenderChart(ctx context.Context, userID, id string) ([]byte, error) {
	bt, err := s.GetBacktest(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if bt.Status != models.BacktestStatusCompleted || bt.Results == nil {
		return nil, ErrNotCompleted
	}
	return renderPerformanceChart(bt.Name, bt.Results.PerformanceSeries)
}
