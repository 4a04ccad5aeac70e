package remote

import (
	"github.com/pkg/errors"

	"github.com/filebutler/filebutler/pkg/domain"
)

var ErrUnknownProvider = errors.New("requested storage provider doesn't exist")

// Registry holds the configured storage port bindings keyed by provider
// name. Exactly one is selected at startup; past that point the core only
// sees the StoragePort interface.
type Registry struct {
	ports map[string]domain.StoragePort
}

func NewRegistry(ports map[string]domain.StoragePort) *Registry {
	return &Registry{
		ports: ports,
	}
}

func (r *Registry) Select(name string) (domain.StoragePort, error) {
	if port, ok := r.ports[name]; ok {
		return port, nil
	}
	return nil, errors.Wrap(ErrUnknownProvider, name)
}
