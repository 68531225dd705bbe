package historyrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/pkg/util"
)

// PostgresRepository persists daily luck scores in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Record upserts the score for the entry's user and day.
func (r *PostgresRepository) Record(ctx context.Context, entry luck.HistoryEntry) error {
	day, err := util.ParseDate(entry.Date)
	if err != nil {
		return fmt.Errorf("history date: %w", err)
	}
	components, err := json.Marshal(entry.Components)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO luck_history (uid, day, score, components)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid, day) DO UPDATE
		SET score = EXCLUDED.score, components = EXCLUDED.components, updated_at = now()
	`, entry.UID, day, entry.Score, components)
	return err
}

// Recent lists entries on or after since, oldest first.
func (r *PostgresRepository) Recent(ctx context.Context, uid string, since time.Time) ([]luck.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uid, day, score, components
		FROM luck_history
		WHERE uid = $1 AND day >= $2
		ORDER BY day ASC
	`, uid, since.UTC().Format(util.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []luck.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (luck.HistoryEntry, error) {
	var (
		entry      luck.HistoryEntry
		day        time.Time
		components []byte
	)
	if err := row.Scan(&entry.UID, &day, &entry.Score, &components); err != nil {
		return luck.HistoryEntry{}, err
	}
	entry.Date = day.UTC().Format(util.DateLayout)
	if len(components) > 0 {
		if err := json.Unmarshal(components, &entry.Components); err != nil {
			return luck.HistoryEntry{}, err
		}
	}
	return entry, nil
}

var _ luck.HistoryRepository = (*PostgresRepository)(nil)
