package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// AlertStore manages alerts produced by the alert pipeline.
type AlertStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(db *surrealdb.DB, logger *common.Logger) *AlertStore {
	return &AlertStore{db: db, logger: logger}
}

func (s *AlertStore) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()[:8]
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	alert.Ticker = models.NormalizeTicker(alert.Ticker)

	sql := "CREATE type::record('alert', $id) CONTENT $alert"
	vars := map[string]any{"id": alert.ID, "alert": alert}

	if _, err := surrealdb.Query[[]models.Alert](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (s *AlertStore) Get(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := surrealdb.Select[models.Alert](ctx, s.db, surrealmodels.NewRecordID("alert", id))
	if err != nil {
		return nil, fmt.Errorf("failed to select alert: %w", err)
	}
	if alert == nil || alert.ID == "" {
		return nil, ErrNotFound
	}
	return alert, nil
}

// List returns alerts visible to userID: global alerts plus the user's own.
func (s *AlertStore) List(ctx context.Context, userID string, filter models.AlertFilter) ([]*models.Alert, error) {
	sql := "SELECT * FROM alert WHERE (user_id = $user_id OR user_id = '')"
	vars := map[string]any{"user_id": userID}

	if filter.Ticker != "" {
		sql += " AND ticker = $ticker"
		vars["ticker"] = models.NormalizeTicker(filter.Ticker)
	}
	if filter.UnreadOnly {
		sql += " AND is_read = false"
	}
	if !filter.IncludeHidden {
		sql += " AND is_dismissed = false"
	}
	sql += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	sql += " LIMIT $limit"
	vars["limit"] = limit

	results, err := surrealdb.Query[[]models.Alert](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	var alerts []*models.Alert
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			alerts = append(alerts, &(*results)[0].Result[i])
		}
	}
	return alerts, nil
}

func (s *AlertStore) MarkRead(ctx context.Context, id string) error {
	sql := "UPDATE $rid SET is_read = true"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("alert", id)}

	if _, err := surrealdb.Query[[]models.Alert](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	return nil
}

func (s *AlertStore) MarkDismissed(ctx context.Context, id string) error {
	sql := "UPDATE $rid SET is_dismissed = true"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("alert", id)}

	if _, err := surrealdb.Query[[]models.Alert](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to dismiss alert: %w", err)
	}
	return nil
}

func (s *AlertStore) CountUnread(ctx context.Context, userID string) (int, error) {
	sql := "SELECT count() AS cnt FROM alert WHERE (user_id = $user_id OR user_id = '') AND is_read = false AND is_dismissed = false GROUP ALL"
	vars := map[string]any{"user_id": userID}

	type countResult struct {
		Cnt int `json:"cnt"`
	}

	results, err := surrealdb.Query[[]countResult](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Cnt, nil
	}
	return 0, nil
}

func (s *AlertStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	sql := "DELETE FROM alert WHERE created_at < $cutoff"
	vars := map[string]any{"cutoff": cutoff}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return 0, fmt.Errorf("failed to purge alerts: %w", err)
	}
	// SurrealDB DELETE doesn't return count easily, return 0
	return 0, nil
}

// Compile-time check
var _ interfaces.AlertStore = (*AlertStore)(nil)
