package catalog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyora/tripweaver/internal/domain/trip"
)

// PostgresRepository implements trip.CatalogRepository using pgx. Candidate
// sets are stored as one JSON document per name.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetSet fetches a named candidate set.
func (r *PostgresRepository) GetSet(ctx context.Context, name string) (trip.Resources, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT payload
		FROM candidate_sets
		WHERE name = $1
		LIMIT 1
	`, name)
	if err != nil {
		return trip.Resources{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return trip.Resources{}, false, rows.Err()
	}
	var payload []byte
	if err := rows.Scan(&payload); err != nil {
		return trip.Resources{}, false, err
	}
	var res trip.Resources
	if err := json.Unmarshal(payload, &res); err != nil {
		return trip.Resources{}, false, err
	}
	return res, true, rows.Err()
}

// SaveSet upserts a named candidate set.
func (r *PostgresRepository) SaveSet(ctx context.Context, name string, res trip.Resources) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO candidate_sets (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now()
	`, name, payload)
	return err
}

var _ trip.CatalogRepository = (*PostgresRepository)(nil)
