package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"aesthetic_doctor_bot/internal/domain"
)

const (
	selectExistingSQL = `SELECT code_plain FROM public.preview_one_time_codes WHERE code_plain = ANY($1)`
	insertCodesSQL    = `INSERT INTO public.preview_one_time_codes (code_plain, label, expires_at, end_message)
SELECT * FROM unnest($1::text[], $2::text[], $3::timestamptz[], $4::text[])`
)

// pgQuerier is satisfied by *pgxpool.Pool.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresBackend stores codes in public.preview_one_time_codes.
type PostgresBackend struct {
	db pgQuerier
}

// NewPostgresBackend constructs a PostgresBackend.
func NewPostgresBackend(db pgQuerier) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Existing(ctx context.Context, codes []string) ([]string, error) {
	if b == nil || b.db == nil {
		return nil, errors.New("postgres code backend is not initialized")
	}
	if len(codes) == 0 {
		return nil, nil
	}

	rows, err := b.db.Query(ctx, selectExistingSQL, codes)
	if err != nil {
		return nil, fmt.Errorf("query codes: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan codes: %w", err)
	}
	return found, nil
}

func (b *PostgresBackend) Insert(ctx context.Context, records []domain.ActivationCode) error {
	if b == nil || b.db == nil {
		return errors.New("postgres code backend is not initialized")
	}

	codes := make([]string, len(records))
	labels := make([]string, len(records))
	expiries := make([]time.Time, len(records))
	messages := make([]string, len(records))
	for i, record := range records {
		if record.Code == "" {
			return errors.New("code_plain is required")
		}
		codes[i] = record.Code
		labels[i] = record.Label
		expiries[i] = record.ExpiresAt
		messages[i] = record.EndMessage
	}

	tag, err := b.db.Exec(ctx, insertCodesSQL, codes, labels, expiries, messages)
	if err != nil {
		return fmt.Errorf("insert codes: %w", err)
	}
	if tag.RowsAffected() != int64(len(records)) {
		return fmt.Errorf("insert codes: expected %d rows, inserted %d", len(records), tag.RowsAffected())
	}
	return nil
}
