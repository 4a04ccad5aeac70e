package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/filebutler/filebutler/pkg/domain"
)

const (
	uploadInsertQuery = `
		INSERT INTO uploads (
			artifact_key, provider, remote_key, size,
			uploaded_at, remote_deleted_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	uploadSelectByArtifactKey = `
		SELECT
			id,
			artifact_key, provider, remote_key, size,
			uploaded_at, remote_deleted_at
		FROM uploads
		WHERE artifact_key = ?
		ORDER BY uploaded_at DESC
		LIMIT 1
	`

	uploadMarkRemoteDeleted = `
		UPDATE uploads SET remote_deleted_at = ? WHERE id = ?
	`
)

// UploadRepository persists which artifacts have a live remote copy. The
// backup directories stay the source of truth for local state; only the
// remote side, which the filesystem cannot encode, lives here.
type UploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{
		db: db,
	}
}

func (r *UploadRepository) Record(ctx context.Context, record domain.UploadRecord) (domain.UploadRecord, error) {
	res, err := r.db.ExecContext(
		ctx,
		uploadInsertQuery,
		record.ArtifactKey, record.Provider, record.RemoteKey, record.Size,
		record.UploadedAt, record.RemoteDeletedAt,
	)
	if err != nil {
		return record, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return record, err
	}

	record.Id = id

	return record, nil
}

func (r *UploadRepository) FindByArtifactKey(ctx context.Context, key string) (*domain.UploadRecord, error) {
	var record domain.UploadRecord

	err := r.db.GetContext(ctx, &record, uploadSelectByArtifactKey, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *UploadRepository) MarkRemoteDeleted(ctx context.Context, record domain.UploadRecord) error {
	_, err := r.db.ExecContext(ctx, uploadMarkRemoteDeleted, time.Now(), record.Id)
	return err
}
