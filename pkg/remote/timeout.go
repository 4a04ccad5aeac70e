package remote

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/filebutler/filebutler/pkg/domain"
)

// timedPort decorates a storage port with a per-call deadline and folds
// provider errors into the storage error taxonomy. A deadline hit on upload
// is a retryable condition, not a fatal one.
type timedPort struct {
	inner   domain.StoragePort
	timeout time.Duration
}

func WithTimeout(port domain.StoragePort, timeout time.Duration) domain.StoragePort {
	return &timedPort{
		inner:   port,
		timeout: timeout,
	}
}

func (p *timedPort) Name() string {
	return p.inner.Name()
}

func (p *timedPort) Authenticate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.inner.Authenticate(ctx); err != nil {
		return errors.Wrap(domain.ErrAuth, err.Error())
	}

	return nil
}

func (p *timedPort) Put(ctx context.Context, artifact domain.Artifact) (domain.RemoteRef, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ref, err := p.inner.Put(ctx, artifact)
	if err != nil {
		return ref, errors.Wrap(storageError(err, domain.ErrUpload), err.Error())
	}

	return ref, nil
}

func (p *timedPort) List(ctx context.Context) ([]domain.RemoteRef, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.inner.List(ctx)
}

func (p *timedPort) Delete(ctx context.Context, ref domain.RemoteRef) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.inner.Delete(ctx, ref); err != nil {
		return errors.Wrap(storageError(err, domain.ErrDelete), err.Error())
	}

	return nil
}

func storageError(err, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return fallback
}
