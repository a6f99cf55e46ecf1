package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hexinli/JakartaBackend/modules/tracking/domain/entities/synclog"
	"github.com/hexinli/JakartaBackend/modules/tracking/infrastructure/persistence/models"
	"github.com/hexinli/JakartaBackend/pkg/composables"
	"github.com/hexinli/JakartaBackend/pkg/repo"
)

type SyncLogRepository struct{}

func NewSyncLogRepository() synclog.Repository {
	return &SyncLogRepository{}
}

func (r *SyncLogRepository) Create(ctx context.Context, log *synclog.SyncLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO sync_logs (status, created_count, updated_count, soft_deleted_count, total_count, message, error_detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, log.Status, log.Created, log.Updated, log.SoftDeleted, log.Total, log.Message, log.ErrorDetail,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *SyncLogRepository) Latest(ctx context.Context) (*synclog.SyncLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var m models.SyncLog
	err = tx.QueryRow(ctx, `
		SELECT id, status, created_count, updated_count, soft_deleted_count, total_count, message, error_detail, created_at
		FROM sync_logs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&m.ID, &m.Status, &m.Created, &m.Updated, &m.SoftDeleted, &m.Total, &m.Message, &m.ErrorDetail, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainSyncLog(&m), nil
}

func (r *SyncLogRepository) List(ctx context.Context, limit, offset int) ([]*synclog.SyncLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, status, created_count, updated_count, soft_deleted_count, total_count, message, error_detail, created_at
		FROM sync_logs
		ORDER BY created_at DESC, id DESC
	`+repo.FormatLimitOffset(limit, offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*synclog.SyncLog
	for rows.Next() {
		var m models.SyncLog
		if err := rows.Scan(&m.ID, &m.Status, &m.Created, &m.Updated, &m.SoftDeleted, &m.Total, &m.Message, &m.ErrorDetail, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, toDomainSyncLog(&m))
	}
	return out, rows.Err()
}
