// Package alert generates notifications from material changes in the stock
// universe and serves per-user alert queries.
package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// Compile-time interface check
var _ interfaces.AlertService = (*Service)(nil)

// ErrAlertNotVisible is returned when a user touches an alert they can't see.
var ErrAlertNotVisible = errors.New("alert not visible to user")

// snapshotKey is the system KV entry holding the universe state from the
// previous alert run.
const snapshotKey = "alert_snapshot"

// Trigger thresholds. A change below threshold produces no alert.
const (
	scoreDeltaThreshold = 10.0 // composite score points
	priceMoveThreshold  = 5.0  // percent
	volumeSpikeFactor   = 3.0  // multiple of previous volume
)

// stockSnapshot is the per-ticker state remembered between alert runs.
type stockSnapshot struct {
	Score  float64     `json:"score"`
	Tier   models.Tier `json:"tier"`
	Price  float64     `json:"price"`
	Volume int64       `json:"volume"`
}

// Service implements AlertService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new alert service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GenerateAlerts diffs the active universe against the snapshot from the
// previous run and creates an alert per material change. The first run seeds
// the snapshot and creates nothing, so a cold start never floods the feed.
// Generated alerts carry no user ID and are visible to every user.
func (s *Service) GenerateAlerts(ctx context.Context) (int, error) {
	stocks, err := s.storage.StockStore().List(ctx, models.StockFilter{ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list stocks: %w", err)
	}

	previous, seeded := s.loadSnapshot(ctx)

	created := 0
	current := make(map[string]stockSnapshot, len(stocks))
	for _, stock := range stocks {
		current[stock.Ticker] = stockSnapshot{
			Score:  stock.Score,
			Tier:   stock.Tier,
			Price:  stock.CurrentPrice,
			Volume: stock.Volume,
		}

		prev, ok := previous[stock.Ticker]
		if !ok {
			continue
		}

		for _, alert := range diffStock(stock, prev) {
			if err := s.storage.AlertStore().Create(ctx, alert); err != nil {
				s.logger.Warn().Str("ticker", alert.Ticker).Err(err).Msg("Failed to create alert")
				continue
			}
			created++
		}
	}

	if err := s.saveSnapshot(ctx, current); err != nil {
		return created, fmt.Errorf("failed to save alert snapshot: %w", err)
	}

	if !seeded {
		s.logger.Info().Int("tickers", len(current)).Msg("Alert snapshot seeded")
		return 0, nil
	}

	s.logger.Info().Int("created", created).Msg("Alert generation complete")
	return created, nil
}

// diffStock compares a stock to its previous snapshot and returns one alert
// per triggered rule. Tier and score changes usually fire together; both are
// reported because the tier flip is the headline and the score delta is the
// evidence.
func diffStock(stock *models.Stock, prev stockSnapshot) []*models.Alert {
	var alerts []*models.Alert

	add := func(trigger, rationale string) {
		alerts = append(alerts, &models.Alert{
			Ticker:      stock.Ticker,
			TriggerType: trigger,
			Tier:        stock.Tier,
			Price:       stock.CurrentPrice,
			Rationale:   rationale,
		})
	}

	if prev.Tier != "" && stock.Tier != prev.Tier {
		add(models.AlertTriggerTierChange,
			fmt.Sprintf("%s moved from tier %s to tier %s", stock.Ticker, prev.Tier, stock.Tier))
	}

	scoreDelta := stock.Score - prev.Score
	if scoreDelta >= scoreDeltaThreshold || scoreDelta <= -scoreDeltaThreshold {
		add(models.AlertTriggerScoreChange,
			fmt.Sprintf("%s score changed %+.1f to %.1f", stock.Ticker, scoreDelta, stock.Score))
	}

	if prev.Price > 0 {
		movePct := (stock.CurrentPrice - prev.Price) / prev.Price * 100
		if movePct >= priceMoveThreshold || movePct <= -priceMoveThreshold {
			add(models.AlertTriggerPriceMove,
				fmt.Sprintf("%s moved %+.1f%% to %.2f", stock.Ticker, movePct, stock.CurrentPrice))
		}
	}

	if prev.Volume > 0 && float64(stock.Volume) >= float64(prev.Volume)*volumeSpikeFactor {
		add(models.AlertTriggerVolumeSpike,
			fmt.Sprintf("%s volume %d is %.1fx the previous session", stock.Ticker, stock.Volume,
				float64(stock.Volume)/float64(prev.Volume)))
	}

	return alerts
}

// loadSnapshot returns the previous run's universe state. A missing or
// corrupt snapshot reads as empty, which makes the current run a seeding run.
func (s *Service) loadSnapshot(ctx context.Context) (map[string]stockSnapshot, bool) {
	val, err := s.storage.InternalStore().GetSystemKV(ctx, snapshotKey)
	if err != nil {
		return map[string]stockSnapshot{}, false
	}
	var snapshot map[string]stockSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding corrupt alert snapshot")
		return map[string]stockSnapshot{}, false
	}
	return snapshot, true
}

func (s *Service) saveSnapshot(ctx context.Context, snapshot map[string]stockSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.storage.InternalStore().SetSystemKV(ctx, snapshotKey, string(data))
}

// ListAlerts returns alerts visible to the user, newest first
func (s *Service) ListAlerts(ctx context.Context, userID string, filter models.AlertFilter) ([]*models.Alert, error) {
	alerts, err := s.storage.AlertStore().List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead flags an alert as read after checking the user can see it
func (s *Service) MarkRead(ctx context.Context, userID, alertID string) error {
	if err := s.checkVisible(ctx, userID, alertID); err != nil {
		return err
	}
	return s.storage.AlertStore().MarkRead(ctx, alertID)
}

// Dismiss hides an alert from the user's default listings
func (s *Service) Dismiss(ctx context.Context, userID, alertID string) error {
	if err := s.checkVisible(ctx, userID, alertID); err != nil {
		return err
	}
	return s.storage.AlertStore().MarkDismissed(ctx, alertID)
}

// UnreadCount returns the user's unread, undismissed alert count
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.storage.AlertStore().CountUnread(ctx, userID)
}

// checkVisible verifies the alert exists and is either global or owned by
// the user.
func (s *Service) checkVisible(ctx context.Context, userID, alertID string) error {
	alert, err := s.storage.AlertStore().Get(ctx, alertID)
	if err != nil {
		return fmt.Errorf("failed to get alert: %w", err)
	}
	if alert.UserID != "" && alert.UserID != userID {
		return ErrAlertNotVisible
	}
	return nil
}

// PurgeOld removes alerts older than the retention window. Called by the
// job runner's housekeeping pass.
func (s *Service) PurgeOld(ctx context.Context, retention time.Duration) (int, error) {
	return s.storage.AlertStore().PurgeOlderThan(ctx, time.Now().Add(-retention))
}
