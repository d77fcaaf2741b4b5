// Package secret resolves the API credential of the job from a secret store.
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/weather-etl/internal/domain/weather"
)

// EnvScheme prefixes secret paths read from the process environment.
const EnvScheme = "env://"

// Provider resolves a secret path to its value.
type Provider interface {
	// Resolve returns the secret value. Any failure is a credential error and is fatal for the run.
	Resolve(ctx context.Context, path string) (string, error)
	Close() error
}

// EnvSecretProvider reads "env://NAME" paths from the environment.
type EnvSecretProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvSecretProvider creates an EnvSecretProvider over os.LookupEnv.
func NewEnvSecretProvider() *EnvSecretProvider {
	return &EnvSecretProvider{lookup: os.LookupEnv}
}

func (p *EnvSecretProvider) Resolve(_ context.Context, path string) (string, error) {
	name, ok := strings.CutPrefix(path, EnvScheme)
	if !ok || name == "" {
		return "", weather.NewCredentialError(path, fmt.Errorf("not an %sNAME path", EnvScheme))
	}
	value, ok := p.lookup(name)
	if !ok || value == "" {
		return "", weather.NewCredentialError(path, fmt.Errorf("environment variable %s is not set", name))
	}
	return value, nil
}

func (p *EnvSecretProvider) Close() error { return nil }

// Router sends "env://" paths to the environment and every other path to the secret store.
type Router struct {
	env   Provider
	store Provider
}

// NewRouter creates a Router.
func NewRouter(env, store Provider) *Router {
	return &Router{env: env, store: store}
}

func (r *Router) Resolve(ctx context.Context, path string) (string, error) {
	if strings.HasPrefix(path, EnvScheme) {
		return r.env.Resolve(ctx, path)
	}
	return r.store.Resolve(ctx, path)
}

func (r *Router) Close() error {
	var result *multierror.Error
	for _, p := range []Provider{r.env, r.store} {
		if err := p.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// CachingProvider resolves every path at most once. Failures are not cached.
type CachingProvider struct {
	delegate Provider
	mu       sync.Mutex
	values   map[string]string
}

// NewCachingProvider wraps delegate.
func NewCachingProvider(delegate Provider) *CachingProvider {
	return &CachingProvider{delegate: delegate, values: make(map[string]string)}
}

func (c *CachingProvider) Resolve(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[path]; ok {
		return v, nil
	}
	v, err := c.delegate.Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	c.values[path] = v
	return v, nil
}

func (c *CachingProvider) Close() error {
	c.mu.Lock()
	clear(c.values)
	c.mu.Unlock()
	return c.delegate.Close()
}

// ErrEmptySecret is wrapped when the store returns a secret without payload.
var ErrEmptySecret = errors.New("secret payload is empty")
