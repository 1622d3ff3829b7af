package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// storeSnapshots upserts one usage row per account into Postgres, so repeated
// runs build a queryable history of mailbox growth. Only reached when a DSN
// is configured; any failure here is reported as a warning by the caller
// because the report has already been rendered.
func storeSnapshots(dsn string, records []*accountRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS mail_usage (
  username text PRIMARY KEY,
  full_name text,
  size_bytes bigint NOT NULL,
  message_count integer NOT NULL,
  forward text,
  scanned_at timestamptz NOT NULL
);
`); err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	stmt := `
INSERT INTO mail_usage (username, full_name, size_bytes, message_count, forward, scanned_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (username) DO UPDATE
  SET full_name=EXCLUDED.full_name,
      size_bytes=EXCLUDED.size_bytes,
      message_count=EXCLUDED.message_count,
      forward=EXCLUDED.forward,
      scanned_at=EXCLUDED.scanned_at;
`
	now := time.Now().UTC()
	for _, rec := range records {
		if _, err := tx.Exec(ctx, stmt, rec.User, rec.FullName, rec.Size, rec.Count, rec.Forward, now); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
