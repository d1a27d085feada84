package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/classbook-backend/internal/model"
)

// stateRowID is the primary key of the only app_state row.
const stateRowID = 1

// PostgresStore keeps the workbook in the JSONB column of app_state.
// The table is created by cmd/migrate.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Name() string { return "postgres" }

func (p *PostgresStore) Load(ctx context.Context) (*model.AppState, bool, error) {
	var b []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM app_state WHERE id = $1`, stateRowID).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, failure("select app_state", err)
	}
	st, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

func (p *PostgresStore) Save(ctx context.Context, st *model.AppState) error {
	b, err := encode(st)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO app_state (id, data, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		stateRowID, b)
	if err != nil {
		return failure("upsert app_state", err)
	}
	return nil
}
