package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/we-ne/sentinel/internal/models"
)

// PostgresLedgerArchive mirrors the hash-chained ledger into Postgres so the
// chain survives process restarts for offline verification. The in-memory
// chain stays authoritative; duplicate appends on retry are ignored.
type PostgresLedgerArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresLedgerArchive(ctx context.Context, connString string) (*PostgresLedgerArchive, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresLedgerArchive{pool: pool}, nil
}

func (a *PostgresLedgerArchive) Close() {
	a.pool.Close()
}

func (a *PostgresLedgerArchive) ArchiveEntry(ctx context.Context, entry *models.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal entry details: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (id, ts, category, action, actor_id, actor_role, admin_id, target_actor_id, details, prev_hash, entry_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = a.pool.Exec(ctx, query,
		entry.ID, entry.Timestamp, entry.Category, entry.Action,
		entry.Actor.ActorID, string(entry.Actor.Role), entry.Actor.AdminID,
		entry.TargetActorID, details, entry.PrevHash, entry.EntryHash,
	)

	if err != nil {
		// Unique violation means the entry was archived already.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("failed to archive ledger entry: %w", err)
	}

	return nil
}

// LastHash returns the entry hash of the newest archived entry, or the empty
// string when the archive is empty.
func (a *PostgresLedgerArchive) LastHash(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var hash string
	query := `SELECT entry_hash FROM ledger_entries ORDER BY ts DESC, id DESC LIMIT 1`
	err := a.pool.QueryRow(ctx, query).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read archive head: %w", err)
	}
	return hash, nil
}
