// Package common holds fixtures shared by integration tests.
package common

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const surrealImage = "surrealdb/surrealdb:v3.0.0"

// SurrealFixture is a SurrealDB instance shared by every storage test in the
// process. Databases are cheap in SurrealDB, so isolation happens per test
// via a unique database name, not per container.
type SurrealFixture struct {
	RPCURL string

	container testcontainers.Container
}

var (
	fixtureOnce sync.Once
	fixture     *SurrealFixture
	fixtureErr  error
)

// StartSurrealDB returns the shared fixture, starting the container on
// first use.
func StartSurrealDB(t *testing.T) *SurrealFixture {
	t.Helper()

	fixtureOnce.Do(func() {
		fixture, fixtureErr = startSurreal(context.Background())
	})
	if fixtureErr != nil {
		t.Fatalf("SurrealDB fixture: %v", fixtureErr)
	}
	return fixture
}

func startSurreal(ctx context.Context) (*SurrealFixture, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        surrealImage,
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	endpoint, err := c.PortEndpoint(ctx, "8000/tcp", "")
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("resolve endpoint: %w", err)
	}

	return &SurrealFixture{
		RPCURL:    fmt.Sprintf("ws://%s/rpc", endpoint),
		container: c,
	}, nil
}

// Terminate stops the container. Call from TestMain when the package owns
// the fixture lifecycle; otherwise the reaper collects it after the run.
func (f *SurrealFixture) Terminate() {
	if f != nil && f.container != nil {
		f.container.Terminate(context.Background())
	}
}
