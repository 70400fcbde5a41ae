package helper

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDbName = "kgraph"
	testDbUser = "postgres"
	testDbPwd  = "postgres"
)

// MustStartPostgresContainer starts a disposable postgres container for
// tests and returns its teardown function and mapped port.
func MustStartPostgresContainer() (func(context.Context, ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(testDbName),
		postgres.WithUsername(testDbUser),
		postgres.WithPassword(testDbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", err
	}

	mappedPort, err := dbContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, "", err
	}

	return dbContainer.Terminate, mappedPort.Port(), nil
}

// SetTestDatabaseConfigEnvs points the database configuration at the
// test container for the duration of a test.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("KGRAPH_DB_HOST", "localhost")
	t.Setenv("KGRAPH_DB_PORT", port)
	t.Setenv("KGRAPH_DB_USER", testDbUser)
	t.Setenv("KGRAPH_DB_PASSWORD", testDbPwd)
	t.Setenv("KGRAPH_DB_NAME", testDbName)
	t.Setenv("KGRAPH_DB_SCHEMA", "public")
}
