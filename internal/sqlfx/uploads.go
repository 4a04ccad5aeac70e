package sqlfx

import (
	"github.com/jmoiron/sqlx"

	"github.com/filebutler/filebutler/pkg/domain"
	"github.com/filebutler/filebutler/pkg/storage"
)

func UploadLedger(db *sqlx.DB) (*storage.UploadRepository, domain.UploadLedger) {
	repo := storage.NewUploadRepository(db)

	return repo, repo
}
