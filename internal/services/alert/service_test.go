package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

type fakeStockStore struct {
	interfaces.StockStore
	stocks []*models.Stock
}

func (f *fakeStockStore) List(ctx context.Context, filter models.StockFilter) ([]*models.Stock, error) {
	return f.stocks, nil
}

type fakeAlertStore struct {
	interfaces.AlertStore
	alerts    []*models.Alert
	read      []string
	dismissed []string
}

func (f *fakeAlertStore) Create(ctx context.Context, alert *models.Alert) error {
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertStore) Get(ctx context.Context, id string) (*models.Alert, error) {
	for _, a := range f.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("alert not found")
}

func (f *fakeAlertStore) MarkRead(ctx context.Context, id string) error {
	f.read = append(f.read, id)
	return nil
}

func (f *fakeAlertStore) MarkDismissed(ctx context.Context, id string) error {
	f.dismissed = append(f.dismissed, id)
	return nil
}

type fakeInternalStore struct {
	interfaces.InternalStore
	kv map[string]string
}

func (f *fakeInternalStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	v, ok := f.kv[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return v, nil
}

func (f *fakeInternalStore) SetSystemKV(ctx context.Context, key, value string) error {
	f.kv[key] = value
	return nil
}

type fakeStorage struct {
	interfaces.StorageManager
	stocks   *fakeStockStore
	alerts   *fakeAlertStore
	internal *fakeInternalStore
}

func newFakeStorage(stocks ...*models.Stock) *fakeStorage {
	return &fakeStorage{
		stocks:   &fakeStockStore{stocks: stocks},
		alerts:   &fakeAlertStore{},
		internal: &fakeInternalStore{kv: make(map[string]string)},
	}
}

func (f *fakeStorage) StockStore() interfaces.StockStore       { return f.stocks }
func (f *fakeStorage) AlertStore() interfaces.AlertStore       { return f.alerts }
func (f *fakeStorage) InternalStore() interfaces.InternalStore { return f.internal }

func seedSnapshot(t *testing.T, storage *fakeStorage, snapshot map[string]stockSnapshot) {
	t.Helper()
	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}
	storage.internal.kv[snapshotKey] = string(data)
}

func TestGenerateAlerts_FirstRunSeedsSilently(t *testing.T) {
	storage := newFakeStorage(
		&models.Stock{Ticker: "GCB", Score: 80, Tier: models.TierA, CurrentPrice: 5.50, Volume: 10000},
	)
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 0 {
		t.Errorf("seeding run must create no alerts, got %d", created)
	}
	if len(storage.alerts.alerts) != 0 {
		t.Errorf("expected empty alert store, got %d", len(storage.alerts.alerts))
	}
	if _, ok := storage.internal.kv[snapshotKey]; !ok {
		t.Error("expected snapshot seeded")
	}
}

func TestGenerateAlerts_NoChangesNoAlerts(t *testing.T) {
	storage := newFakeStorage(
		&models.Stock{Ticker: "GCB", Score: 80, Tier: models.TierA, CurrentPrice: 5.50, Volume: 10000},
	)
	seedSnapshot(t, storage, map[string]stockSnapshot{
		"GCB": {Score: 80, Tier: models.TierA, Price: 5.50, Volume: 10000},
	})
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 0 {
		t.Errorf("unchanged universe must create no alerts, got %d", created)
	}
}

func TestGenerateAlerts_TierChange(t *testing.T) {
	storage := newFakeStorage(
		&models.Stock{Ticker: "GCB", Score: 65, Tier: models.TierB, CurrentPrice: 5.50, Volume: 10000},
	)
	seedSnapshot(t, storage, map[string]stockSnapshot{
		"GCB": {Score: 72, Tier: models.TierA, Price: 5.50, Volume: 10000},
	})
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 alert, got %d", created)
	}
	alert := storage.alerts.alerts[0]
	if alert.TriggerType != models.AlertTriggerTierChange {
		t.Errorf("expected tier_change, got %s", alert.TriggerType)
	}
	if alert.Tier != models.TierB {
		t.Errorf("expected tier snapshot B, got %s", alert.Tier)
	}
	if alert.UserID != "" {
		t.Errorf("generated alerts must be global, got user %s", alert.UserID)
	}
}

func TestGenerateAlerts_ScoreDelta(t *testing.T) {
	tests := []struct {
		name     string
		prev     float64
		current  float64
		expected int
	}{
		{"big drop fires", 60, 45, 1},
		{"big rise fires", 45, 60, 1},
		{"exactly threshold fires", 50, 60, 1},
		{"small move silent", 50, 59, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Keep tier fixed so only the score rule can fire
			storage := newFakeStorage(
				&models.Stock{Ticker: "GCB", Score: tt.current, Tier: models.TierB, CurrentPrice: 5.50, Volume: 10000},
			)
			seedSnapshot(t, storage, map[string]stockSnapshot{
				"GCB": {Score: tt.prev, Tier: models.TierB, Price: 5.50, Volume: 10000},
			})
			svc := NewService(storage, common.NewSilentLogger())

			created, err := svc.GenerateAlerts(context.Background())
			if err != nil {
				t.Fatalf("GenerateAlerts failed: %v", err)
			}
			if created != tt.expected {
				t.Errorf("expected %d alerts, got %d", tt.expected, created)
			}
		})
	}
}

func TestGenerateAlerts_PriceMove(t *testing.T) {
	storage := newFakeStorage(
		&models.Stock{Ticker: "MTNGH", Score: 50, Tier: models.TierB, CurrentPrice: 1.60, Volume: 10000},
	)
	// 1.50 -> 1.60 is +6.7%
	seedSnapshot(t, storage, map[string]stockSnapshot{
		"MTNGH": {Score: 50, Tier: models.TierB, Price: 1.50, Volume: 10000},
	})
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 alert, got %d", created)
	}
	alert := storage.alerts.alerts[0]
	if alert.TriggerType != models.AlertTriggerPriceMove {
		t.Errorf("expected price_move, got %s", alert.TriggerType)
	}
	if alert.Price != 1.60 {
		t.Errorf("expected price snapshot 1.60, got %.2f", alert.Price)
	}
}

func TestGenerateAlerts_VolumeSpike(t *testing.T) {
	storage := newFakeStorage(
		&models.Stock{Ticker: "GCB", Score: 50, Tier: models.TierB, CurrentPrice: 5.50, Volume: 45000},
	)
	seedSnapshot(t, storage, map[string]stockSnapshot{
		"GCB": {Score: 50, Tier: models.TierB, Price: 5.50, Volume: 10000},
	})
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 alert, got %d", created)
	}
	if storage.alerts.alerts[0].TriggerType != models.AlertTriggerVolumeSpike {
		t.Errorf("expected volume_spike, got %s", storage.alerts.alerts[0].TriggerType)
	}
}

func TestGenerateAlerts_MultipleTriggersOneStock(t *testing.T) {
	// Tier flip and score collapse together
	storage := newFakeStorage(
		&models.Stock{Ticker: "GCB", Score: 35, Tier: models.TierC, CurrentPrice: 5.50, Volume: 10000},
	)
	seedSnapshot(t, storage, map[string]stockSnapshot{
		"GCB": {Score: 55, Tier: models.TierB, Price: 5.50, Volume: 10000},
	})
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 2 {
		t.Errorf("expected tier and score alerts, got %d", created)
	}
}

func TestGenerateAlerts_NewListingSilent(t *testing.T) {
	// A ticker absent from the snapshot has no baseline to diff against
	storage := newFakeStorage(
		&models.Stock{Ticker: "NEWCO", Score: 90, Tier: models.TierA, CurrentPrice: 1.00, Volume: 500},
	)
	seedSnapshot(t, storage, map[string]stockSnapshot{
		"GCB": {Score: 50, Tier: models.TierB, Price: 5.50, Volume: 10000},
	})
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 0 {
		t.Errorf("new listing must not alert, got %d", created)
	}

	// But it joins the snapshot for the next run
	var snapshot map[string]stockSnapshot
	if err := json.Unmarshal([]byte(storage.internal.kv[snapshotKey]), &snapshot); err != nil {
		t.Fatalf("bad snapshot: %v", err)
	}
	if _, ok := snapshot["NEWCO"]; !ok {
		t.Error("expected NEWCO in updated snapshot")
	}
	if _, ok := snapshot["GCB"]; ok {
		t.Error("delisted GCB must drop out of the snapshot")
	}
}

func TestGenerateAlerts_CorruptSnapshotReseeds(t *testing.T) {
	storage := newFakeStorage(
		&models.Stock{Ticker: "GCB", Score: 80, Tier: models.TierA, CurrentPrice: 5.50, Volume: 10000},
	)
	storage.internal.kv[snapshotKey] = "{not json"
	svc := NewService(storage, common.NewSilentLogger())

	created, err := svc.GenerateAlerts(context.Background())
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if created != 0 {
		t.Errorf("corrupt snapshot must reseed silently, got %d alerts", created)
	}
	var snapshot map[string]stockSnapshot
	if err := json.Unmarshal([]byte(storage.internal.kv[snapshotKey]), &snapshot); err != nil {
		t.Fatalf("snapshot not rewritten: %v", err)
	}
}

func TestMarkRead_VisibilityCheck(t *testing.T) {
	storage := newFakeStorage()
	storage.alerts.alerts = []*models.Alert{
		{ID: "global1", Ticker: "GCB"},
		{ID: "owned1", Ticker: "GCB", UserID: "user1"},
	}
	svc := NewService(storage, common.NewSilentLogger())
	ctx := context.Background()

	if err := svc.MarkRead(ctx, "user2", "global1"); err != nil {
		t.Errorf("global alert must be markable by any user: %v", err)
	}
	if err := svc.MarkRead(ctx, "user1", "owned1"); err != nil {
		t.Errorf("owner must be able to mark own alert: %v", err)
	}
	if err := svc.MarkRead(ctx, "user2", "owned1"); !errors.Is(err, ErrAlertNotVisible) {
		t.Errorf("expected ErrAlertNotVisible, got %v", err)
	}
	if err := svc.MarkRead(ctx, "user1", "missing"); err == nil {
		t.Error("expected error for missing alert")
	}
}

func TestDismiss(t *testing.T) {
	storage := newFakeStorage()
	storage.alerts.alerts = []*models.Alert{{ID: "a1", Ticker: "GCB"}}
	svc := NewService(storage, common.NewSilentLogger())

	if err := svc.Dismiss(context.Background(), "user1", "a1"); err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	if len(storage.alerts.dismissed) != 1 || storage.alerts.dismissed[0] != "a1" {
		t.Errorf("expected a1 dismissed, got %v", storage.alerts.dismissed)
	}
}
