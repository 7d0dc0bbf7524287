// Package postgres persists the yard state in PostgreSQL as JSONB records.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// register the postgres driver
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS baleyard_records (
	collection TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	id         TEXT    NOT NULL,
	body       JSONB   NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, seq)
)`

const upsert = `
INSERT INTO baleyard_records (collection, seq, id, body, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (collection, seq)
DO UPDATE SET id = EXCLUDED.id, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

// Config holds connection settings
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *zap.Logger
}

// Persister implements repositories.Persister on PostgreSQL
type Persister struct {
	db     *sql.DB
	logger *zap.Logger
}

// Verify interface compliance
var _ repositories.Persister = (*Persister)(nil)

// Open connects, pings and creates the records table if needed
func Open(ctx context.Context, cfg Config) (*Persister, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{db: db, logger: logger}, nil
}

// Load reads every record back into a snapshot
func (p *Persister) Load(ctx context.Context) (*entities.Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT collection, body FROM baleyard_records ORDER BY collection, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	b := persistence.NewSnapshotBuilder()
	for rows.Next() {
		var collection string
		var body []byte
		if err := rows.Scan(&collection, &body); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := b.Add(collection, body); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return b.Snapshot(), nil
}

// Commit writes all changes in one database transaction
func (p *Persister) Commit(ctx context.Context, changes []repositories.Change) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				p.logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		rec, err := persistence.Encode(c)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.Collection, rec.Seq, rec.Key, rec.Body); err != nil {
			return fmt.Errorf("failed to write %s %s: %w", rec.Collection, rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	p.logger.Debug("committed", zap.Int("records", len(changes)))
	return nil
}

// Close closes the connection pool
func (p *Persister) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
