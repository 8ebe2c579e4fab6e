//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/test/integration"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueue(t *testing.T) {
	ctx := context.Background()
	env, err := integration.Setup(ctx, false)
	require.NoError(t, err)
	t.Cleanup(func() { env.Teardown(context.Background()) })

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))

	q := NewQueue(slog.New(slog.NewTextHandler(io.Discard, nil)), pool)
	post, err := cart.NewPendingPost("post-1", cart.CategoryHelp, "need notes", cart.AnonymousAuthor, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(ctx, post, true))
	require.Error(t, q.Enqueue(ctx, post, true), "ids are unique")

	var category, status string
	var anonymous bool
	err = pool.QueryRow(ctx, `SELECT category, status, is_anonymous FROM explore_posts WHERE id = $1`, "post-1").
		Scan(&category, &status, &anonymous)
	require.NoError(t, err)
	require.Equal(t, string(cart.CategoryHelp), category)
	require.Equal(t, string(cart.StatusPending), status)
	require.True(t, anonymous)
}
