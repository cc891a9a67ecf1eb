package clients

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"sync"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/observability"
)

// asyncSuffix is appended to the key of every async client.
const asyncSuffix = ".async"

// Factories looks up client constructors. *registry.Bound satisfies it.
type Factories interface {
	ClientFactory(provider string, mode ai.ClientMode) (ai.ClientFactory, error)
}

// ConfigSource supplies the configuration of a provider when a request
// does not carry one.
type ConfigSource func(provider string) ai.ClientConfig

// Options select and configure the client Get returns.
type Options struct {
	// Config overrides the configuration from the pool's ConfigSource.
	Config *ai.ClientConfig

	// Key names the cache slot explicitly instead of deriving it.
	Key string

	// New asks for a client of its own under Key instead of one shared by
	// configuration. Requires Key. A client already held under Key is
	// returned as is; Unregister it first to rebuild.
	New bool

	// Mode defaults to ai.ClientModeSync.
	Mode ai.ClientMode
}

// Option configures a Pool.
type Option func(*Pool)

// WithConfigSource sets where provider configuration comes from.
func WithConfigSource(source ConfigSource) Option {
	return func(p *Pool) {
		p.config = source
	}
}

// WithObserver reports client creation through observer.
func WithObserver(observer observability.Provider) Option {
	return func(p *Pool) {
		p.observer = observer
	}
}

// Pool is a concurrency-safe cache of provider clients.
type Pool struct {
	factories Factories
	config    ConfigSource
	observer  observability.Provider

	mu      sync.RWMutex
	clients map[string]ai.Client
}

// NewPool returns an empty pool building clients through factories.
func NewPool(factories Factories, opts ...Option) *Pool {
	p := &Pool{
		factories: factories,
		clients:   make(map[string]ai.Client),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the cache key of a client for provider and opts.
//
// An explicit key is used verbatim. Otherwise the key is the provider name,
// followed by a digest of the configuration when one is given. Async keys
// end in ".async".
func Key(provider string, opts Options) string {
	key := opts.Key
	if key == "" {
		key = provider
		if opts.Config != nil && !opts.Config.IsZero() {
			key += "_" + configDigest(*opts.Config)
		}
	}
	if opts.Mode == ai.ClientModeAsync {
		key += asyncSuffix
	}
	return key
}

func configDigest(cfg ai.ClientConfig) string {
	// ClientConfig holds only strings once the HTTP client is skipped, so
	// marshalling cannot fail.
	data, _ := json.Marshal(cfg)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached client for provider and opts, building it on the
// first request.
func (p *Pool) Get(ctx context.Context, provider string, opts Options) (ai.Client, error) {
	if opts.New && opts.Key == "" {
		return nil, errs.ErrClientKeyRequired
	}
	if opts.Mode == "" {
		opts.Mode = ai.ClientModeSync
	}
	key := Key(provider, opts)

	p.mu.RLock()
	cached, ok := p.clients[key]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	factory, err := p.factories.ClientFactory(provider, opts.Mode)
	if err != nil {
		return nil, err
	}

	cfg := p.configFor(provider, opts)
	client, err := factory(ctx, cfg)
	if err != nil {
		if p.observer != nil {
			p.observer.Error(ctx, "client construction failed",
				observability.String(observability.AttrProvider, provider),
				observability.String(observability.AttrClientMode, string(opts.Mode)),
				observability.Error(err),
			)
		}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have built the same client in the meantime.
	if existing, ok := p.clients[key]; ok {
		return existing, nil
	}
	p.clients[key] = client

	if p.observer != nil {
		p.observer.Counter(observability.MetricClientsCreated).Add(ctx, 1,
			observability.String(observability.AttrProvider, provider),
			observability.String(observability.AttrClientMode, string(opts.Mode)),
		)
		p.observer.Debug(ctx, "client created",
			observability.String(observability.AttrProvider, provider),
			observability.String(observability.AttrClientKey, key),
			observability.String(observability.AttrClientMode, string(opts.Mode)),
		)
	}
	return client, nil
}

func (p *Pool) configFor(provider string, opts Options) ai.ClientConfig {
	if opts.Config != nil {
		return *opts.Config
	}
	if p.config != nil {
		return p.config(provider)
	}
	return ai.ClientConfig{}
}

// Register stores client under the key derived from provider and opts,
// replacing any client already there. It returns the key used.
func (p *Pool) Register(provider string, client ai.Client, opts Options) string {
	if opts.Mode == "" {
		opts.Mode = client.Mode()
	}
	key := Key(provider, opts)

	p.mu.Lock()
	p.clients[key] = client
	p.mu.Unlock()
	return key
}

// Unregister drops the client stored under the key derived from provider
// and opts. It reports whether a client was removed.
func (p *Pool) Unregister(provider string, opts Options) bool {
	key := Key(provider, opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[key]; !ok {
		return false
	}
	delete(p.clients, key)
	return true
}

// Clear drops every cached client.
func (p *Pool) Clear() {
	p.mu.Lock()
	clear(p.clients)
	p.mu.Unlock()
}

// Len returns the number of cached clients.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

// All returns a copy of the cache keyed by client key.
func (p *Pool) All() map[string]ai.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.clients)
}

// ByKey returns the client cached under key.
func (p *Pool) ByKey(key string) (ai.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	client, ok := p.clients[key]
	if !ok {
		return nil, errs.NotFound(errs.KindClient, "", key)
	}
	return client, nil
}
