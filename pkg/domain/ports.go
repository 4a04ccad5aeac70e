package domain

import (
	"context"
	"time"
)

// RemoteRef identifies an artifact copy held by a storage provider.
type RemoteRef struct {
	Key        string
	Size       int64
	ModifiedAt time.Time
}

// StoragePort is the capability boundary to remote storage. The core never
// branches on provider identity; exactly one binding is active per process,
// selected once at startup.
type StoragePort interface {
	Name() string
	Authenticate(ctx context.Context) error
	Put(ctx context.Context, artifact Artifact) (RemoteRef, error)
	List(ctx context.Context) ([]RemoteRef, error)
	Delete(ctx context.Context, ref RemoteRef) error
}

// UploadRecord tracks the remote fate of one artifact. The backup directory
// remains the source of truth for what exists locally; the ledger only holds
// what the filesystem cannot encode.
type UploadRecord struct {
	Id int64

	ArtifactKey string
	Provider    string
	RemoteKey   string
	Size        int64

	UploadedAt      time.Time
	RemoteDeletedAt *time.Time
}

type UploadLedger interface {
	Record(context.Context, UploadRecord) (UploadRecord, error)
	FindByArtifactKey(context.Context, string) (*UploadRecord, error)
	MarkRemoteDeleted(context.Context, UploadRecord) error
}
