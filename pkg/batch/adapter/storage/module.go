package storage

import (
	"context"

	"go.uber.org/fx"

	storageConfig "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/config"
	coreConfig "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/configbinder"
)

// ResolverParams collects the providers contributed to the "storage_providers" group.
type ResolverParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *coreConfig.Config
	Providers []StorageProvider `group:"storage_providers"`
}

// NewConnectionResolverProvider binds the adaptor.storage section and builds the resolver.
func NewConnectionResolverProvider(p ResolverParams) (*ConnectionResolver, error) {
	named := storageConfig.DatasourcesConfig{}
	if err := configbinder.BindSection(p.Config.Surfin.AdaptorConfigs, "storage", &named); err != nil {
		return nil, err
	}
	r := NewConnectionResolver(p.Providers, named)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return r.CloseAll() },
	})
	return r, nil
}

// Module provides the ConnectionResolver. Providers come from the local and gcs modules.
var Module = fx.Options(
	fx.Provide(NewConnectionResolverProvider),
)
