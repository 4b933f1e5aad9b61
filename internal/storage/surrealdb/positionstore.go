package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// PositionStore manages per-user holdings. The record ID encodes
// (user, ticker), which is what enforces one row per holding.
type PositionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(db *surrealdb.DB, logger *common.Logger) *PositionStore {
	return &PositionStore{db: db, logger: logger}
}

// Position ID format: position:<userID>_<ticker>
func positionID(userID, ticker string) string {
	return userID + "_" + models.NormalizeTicker(ticker)
}

func (s *PositionStore) Get(ctx context.Context, userID, ticker string) (*models.Position, error) {
	pos, err := surrealdb.Select[models.Position](ctx, s.db, surrealmodels.NewRecordID("position", positionID(userID, ticker)))
	if err != nil {
		return nil, fmt.Errorf("failed to select position: %w", err)
	}
	if pos == nil || pos.Ticker == "" {
		return nil, ErrNotFound
	}
	return pos, nil
}

func (s *PositionStore) Upsert(ctx context.Context, position *models.Position) error {
	position.Ticker = models.NormalizeTicker(position.Ticker)

	sql := "UPSERT type::record('position', $id) CONTENT $position"
	vars := map[string]any{"id": positionID(position.UserID, position.Ticker), "position": position}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Position](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to upsert position after retries: %w", err)
		}
	}
	return nil
}

func (s *PositionStore) Delete(ctx context.Context, userID, ticker string) error {
	_, err := surrealdb.Delete[models.Position](ctx, s.db, surrealmodels.NewRecordID("position", positionID(userID, ticker)))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

func (s *PositionStore) List(ctx context.Context, userID string) ([]*models.Position, error) {
	sql := "SELECT * FROM position WHERE user_id = $user_id ORDER BY ticker ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.Position](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	var positions []*models.Position
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			positions = append(positions, &(*results)[0].Result[i])
		}
	}
	return positions, nil
}

// Compile-time check
var _ interfaces.PositionStore = (*PositionStore)(nil)
