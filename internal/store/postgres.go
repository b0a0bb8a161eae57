package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"procoon/internal/game"
)

// Connect opens the save-slot pool. Every game operation is one short
// select or upsert against a single row, so the pool stays small.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Postgres keeps each save slot as a single jsonb document. One row
// per slot, replaced wholesale on every write.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, db *pgxpool.Pool) (*Postgres, error) {
	_, err := db.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS procoon;
		CREATE TABLE IF NOT EXISTS procoon.save_slots (
			slot       text PRIMARY KEY,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("ensure save schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Load(ctx context.Context, slot string) (*game.SaveData, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `
		SELECT data
		FROM procoon.save_slots
		WHERE slot = $1
	`, slot).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: slot %s", game.ErrSaveNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("load save %s: %w", slot, err)
	}

	var save game.SaveData
	if err := json.Unmarshal(raw, &save); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrSaveCorrupt, err)
	}
	return &save, nil
}

func (p *Postgres) Save(ctx context.Context, slot string, save *game.SaveData) error {
	raw, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("encode save %s: %w", slot, err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO procoon.save_slots (slot, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()
	`, slot, raw)
	if err != nil {
		return fmt.Errorf("write save %s: %w", slot, err)
	}
	return nil
}
