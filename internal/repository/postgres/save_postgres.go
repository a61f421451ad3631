package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
)

type saveStore struct{ pool *pgxpool.Pool }

// NewSaveStore stores snapshots as JSONB rows keyed by session id.
func NewSaveStore(pool *pgxpool.Pool) repository.SaveStore {
	return &saveStore{pool: pool}
}

func ensurePool(pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}
	return nil
}

func (r *saveStore) Save(ctx context.Context, sessionID string, data model.SaveData) (string, error) {
	if err := ensurePool(r.pool); err != nil {
		return "", err
	}
	b, err := repository.EncodeSave(data)
	if err != nil {
		return "", err
	}
	var handle string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO saves (handle, data, total_events, last_modified)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (handle) DO UPDATE
		 SET data = EXCLUDED.data,
		     total_events = EXCLUDED.total_events,
		     last_modified = EXCLUDED.last_modified,
		     updated_at = now()
		 RETURNING handle`,
		sessionID, b, len(data.Events), data.LastModified,
	).Scan(&handle)
	if err != nil {
		return "", repository.MapPgError(err)
	}
	return handle, nil
}

func (r *saveStore) Load(ctx context.Context, handle string) (model.SaveData, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.SaveData{}, err
	}
	var b []byte
	if err := r.pool.QueryRow(ctx, `SELECT data FROM saves WHERE handle = $1`, handle).Scan(&b); err != nil {
		return model.SaveData{}, repository.MapPgError(err)
	}
	return repository.DecodeSave(b)
}

func (r *saveStore) Delete(ctx context.Context, handle string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM saves WHERE handle = $1`, handle)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *saveStore) List(ctx context.Context) ([]repository.SaveInfo, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT handle, COALESCE(last_modified, created_at), total_events
		 FROM saves ORDER BY created_at, handle`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	var out []repository.SaveInfo
	for rows.Next() {
		var info repository.SaveInfo
		if err := rows.Scan(&info.Handle, &info.LastModified, &info.TotalEvents); err != nil {
			return nil, repository.MapPgError(err)
		}
		info.LastModified = info.LastModified.UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}
