package server

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/accraquant/sika/internal/app"
	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/storage/surrealdb"
)

// fakeInternalStore keeps user accounts in memory. Only the methods the
// handlers touch are implemented; the rest panic via the embedded interface.
type fakeInternalStore struct {
	interfaces.InternalStore
	users map[string]*models.User // keyed by user ID
}

func newFakeInternalStore() *fakeInternalStore {
	return &fakeInternalStore{users: map[string]*models.User{}}
}

func (f *fakeInternalStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, surrealdb.ErrNotFound
}

func (f *fakeInternalStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, surrealdb.ErrNotFound
}

func (f *fakeInternalStore) SaveUser(ctx context.Context, user *models.User) error {
	f.users[user.UserID] = user
	return nil
}

// fakeStorageManager exposes the fake internal store; other stores are
// provided per-test where needed.
type fakeStorageManager struct {
	interfaces.StorageManager
	internal *fakeInternalStore
	jobs     interfaces.JobQueueStore
}

func (f *fakeStorageManager) InternalStore() interfaces.InternalStore {
	return f.internal
}

func (f *fakeStorageManager) JobQueueStore() interfaces.JobQueueStore {
	return f.jobs
}

// testApp builds an App around fakes. Individual tests fill in the service
// fields they exercise.
func testApp() (*app.App, *fakeStorageManager) {
	logger := common.NewLoggerFromConfig(common.LoggingConfig{Level: "disabled"})
	storage := &fakeStorageManager{internal: newFakeInternalStore()}
	a := &app.App{
		Config:  common.NewDefaultConfig(),
		Logger:  logger,
		Storage: storage,
	}
	return a, storage
}

func newTestServer(a *app.App) *Server {
	return &Server{app: a, logger: a.Logger}
}

// authedRequest attaches an authenticated user identity to a request, the
// way the bearer token middleware would.
func authedRequest(r *http.Request, userID, role string) *http.Request {
	uc := &common.UserContext{UserID: userID, Role: role}
	return r.WithContext(common.WithUserContext(r.Context(), uc))
}

func doRequest(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}
