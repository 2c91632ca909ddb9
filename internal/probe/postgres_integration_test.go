//go:build integration

package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestProbe_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	p, err := OpenURL(ctx, dsn)
	require.NoError(t, err)
	defer p.Close()

	for _, stmt := range []string{
		`CREATE TABLE "Users" (id serial PRIMARY KEY, bio text)`,
		`INSERT INTO "Users" (bio) VALUES ('a'), (NULL)`,
	} {
		_, err := p.db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	rows, err := p.RowCount(ctx, "Users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	nonNull, err := p.NonNullCount(ctx, "Users", "bio")
	require.NoError(t, err)
	assert.Equal(t, int64(1), nonNull)
}
