package secret

import (
	"context"

	"go.uber.org/fx"
	"google.golang.org/api/option"

	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// ProviderParams defines the dependencies of NewProvider.
type ProviderParams struct {
	fx.In
	Lifecycle     fx.Lifecycle
	ClientOptions []option.ClientOption `name:"gcpClientOptions" optional:"true"`
}

// NewProvider builds the run's Provider: a cache over env:// and Secret Manager routing.
func NewProvider(p ProviderParams) Provider {
	provider := NewCachingProvider(NewRouter(NewEnvSecretProvider(), NewGCPSecretProvider(p.ClientOptions...)))
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debugf("Closing secret provider.")
			return provider.Close()
		},
	})
	return provider
}

// Module provides Provider.
var Module = fx.Options(
	fx.Provide(NewProvider),
)
