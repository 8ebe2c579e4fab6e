package postgres

import (
	"context"
	"log/slog"

	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS explore_posts (
	id           TEXT PRIMARY KEY,
	category     TEXT NOT NULL,
	content      TEXT NOT NULL,
	author_name  TEXT NOT NULL,
	is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS explore_posts_pending_idx ON explore_posts (created_at) WHERE status = 'pending';
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

type Queue struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewQueue(log *slog.Logger, pool *pgxpool.Pool) *Queue {
	return &Queue{log: log, pool: pool}
}

func (q *Queue) Enqueue(ctx context.Context, post cart.PendingPost, anonymous bool) error {
	_, err := q.pool.Exec(ctx, `INSERT INTO explore_posts (id, category, content, author_name, is_anonymous, status, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		post.ID, string(post.Category), post.Content, post.AuthorName, anonymous, string(post.Status), post.CreatedAt)
	return err
}
