package domain

import "github.com/pkg/errors"

var (
	// Backup build level.
	ErrUndersized = errors.New("artifact is below the minimum expected size")
	ErrPack       = errors.New("unable to pack source tree")

	// Storage level. ErrTimeout and ErrUpload are retryable: the next
	// scheduled run re-attempts the upload under the same remote key.
	ErrAuth    = errors.New("storage authentication failed")
	ErrUpload  = errors.New("upload failed")
	ErrDelete  = errors.New("remote delete failed")
	ErrTimeout = errors.New("storage operation timed out")
)

func IsRetryableStorageError(err error) bool {
	return errors.Is(err, ErrUpload) || errors.Is(err, ErrTimeout)
}
