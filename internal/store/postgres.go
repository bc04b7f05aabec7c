package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Gateway and worker replicas may start together; only one runs the DDL.
	const lockID = 728391045

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jitter_calculations (
			id UUID PRIMARY KEY,
			strategy TEXT NOT NULL,
			retry_count INT NOT NULL,
			base DOUBLE PRECISION NOT NULL,
			multiplier DOUBLE PRECISION NOT NULL,
			cap DOUBLE PRECISION NOT NULL,
			previous_sleep DOUBLE PRECISION,
			sample_range DOUBLE PRECISION[] NOT NULL,
			delay DOUBLE PRECISION NOT NULL,
			rounded INT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS jitter_calculations_created_idx ON jitter_calculations (created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SaveCalculation(ctx context.Context, c Calculation) error {
	if c.ID == uuid.Nil {
		return errors.New("calculation id required")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jitter_calculations
			(id, strategy, retry_count, base, multiplier, cap, previous_sleep, sample_range, delay, rounded, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.Strategy, c.RetryCount, c.Base, c.Multiplier, c.Cap,
		nullFloat(c.PreviousSleep), pq.Array(c.Range), c.Delay, c.Rounded, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save calculation %s: %w", c.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetCalculation(ctx context.Context, id uuid.UUID) (Calculation, error) {
	var (
		c    Calculation
		prev sql.NullFloat64
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, strategy, retry_count, base, multiplier, cap, previous_sleep, sample_range, delay, rounded, created_at
		FROM jitter_calculations WHERE id=$1`, id)
	err := row.Scan(&c.ID, &c.Strategy, &c.RetryCount, &c.Base, &c.Multiplier, &c.Cap,
		&prev, pq.Array(&c.Range), &c.Delay, &c.Rounded, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Calculation{}, ErrCalculationNotFound
		}
		return Calculation{}, fmt.Errorf("failed to get calculation %s: %w", id, err)
	}
	if prev.Valid {
		c.PreviousSleep = &prev.Float64
	}
	return c, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
