package storage

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	storageConfig "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/config"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// ConnectionResolver resolves storage connections by configured name or by URI.
type ConnectionResolver struct {
	providers map[string]StorageProvider
	named     storageConfig.DatasourcesConfig
}

// NewConnectionResolver creates a ConnectionResolver over providers, keyed by their Type.
func NewConnectionResolver(providers []StorageProvider, named storageConfig.DatasourcesConfig) *ConnectionResolver {
	r := &ConnectionResolver{
		providers: make(map[string]StorageProvider, len(providers)),
		named:     named,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Type()] = p
	}
	return r
}

// ResolveLocation resolves a connection able to read and write under loc.
// The connection is named after the location, so repeated calls share it.
func (r *ConnectionResolver) ResolveLocation(ctx context.Context, loc Location) (StorageConnection, error) {
	cfg := storageConfig.StorageConfig{Type: loc.Type}
	switch loc.Type {
	case "gcs":
		cfg.BucketName = loc.Bucket
	case "local":
		cfg.BaseDir = loc.Prefix
	}
	// A named connection of the same type supplies credentials.
	for _, named := range r.named {
		if named.Type == loc.Type && named.CredentialsFile != "" {
			cfg.CredentialsFile = named.CredentialsFile
			break
		}
	}
	return r.connect(ctx, loc.String(), cfg)
}

func (r *ConnectionResolver) connect(ctx context.Context, name string, cfg storageConfig.StorageConfig) (StorageConnection, error) {
	provider, ok := r.providers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider registered for type '%s' (connection '%s')", cfg.Type, name)
	}
	logger.Debugf("Resolving storage connection '%s' with provider '%s'.", name, cfg.Type)
	return provider.GetConnection(ctx, name, cfg)
}

// CloseAll closes every provider's connections.
func (r *ConnectionResolver) CloseAll() error {
	var result *multierror.Error
	for _, p := range r.providers {
		if err := p.CloseAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
