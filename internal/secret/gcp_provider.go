package secret

import (
	"context"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"

	"github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// VersionAccessor reads the payload of a secret version.
type VersionAccessor interface {
	Access(ctx context.Context, name string) ([]byte, error)
	Close() error
}

type secretManagerAccessor struct {
	client *secretmanager.Client
}

func (a *secretManagerAccessor) Access(ctx context.Context, name string) ([]byte, error) {
	resp, err := a.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return resp.GetPayload().GetData(), nil
}

func (a *secretManagerAccessor) Close() error {
	return a.client.Close()
}

// NewSecretManagerAccessor opens a Secret Manager client.
func NewSecretManagerAccessor(ctx context.Context, opts ...option.ClientOption) (VersionAccessor, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &secretManagerAccessor{client: client}, nil
}

// GCPSecretProvider resolves "projects/{project}/secrets/{name}/versions/{version}" paths.
// The client is opened on first use, so runs that only read env:// paths never touch the store.
type GCPSecretProvider struct {
	open func(ctx context.Context) (VersionAccessor, error)

	mu       sync.Mutex
	accessor VersionAccessor
}

// NewGCPSecretProvider creates a provider backed by Secret Manager.
func NewGCPSecretProvider(opts ...option.ClientOption) *GCPSecretProvider {
	return &GCPSecretProvider{
		open: func(ctx context.Context) (VersionAccessor, error) {
			return NewSecretManagerAccessor(ctx, opts...)
		},
	}
}

// NewGCPSecretProviderWithAccessor creates a provider over an existing accessor.
func NewGCPSecretProviderWithAccessor(accessor VersionAccessor) *GCPSecretProvider {
	return &GCPSecretProvider{accessor: accessor}
}

func (p *GCPSecretProvider) Resolve(ctx context.Context, path string) (string, error) {
	accessor, err := p.client(ctx)
	if err != nil {
		return "", weather.NewCredentialError(path, err)
	}
	data, err := accessor.Access(ctx, path)
	if err != nil {
		return "", weather.NewCredentialError(path, err)
	}
	if len(data) == 0 {
		return "", weather.NewCredentialError(path, ErrEmptySecret)
	}
	logger.Debugf("Resolved secret %s.", path)
	return string(data), nil
}

func (p *GCPSecretProvider) client(ctx context.Context) (VersionAccessor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessor != nil {
		return p.accessor, nil
	}
	a, err := p.open(ctx)
	if err != nil {
		return nil, err
	}
	p.accessor = a
	return a, nil
}

func (p *GCPSecretProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessor == nil {
		return nil
	}
	err := p.accessor.Close()
	p.accessor = nil
	return err
}
