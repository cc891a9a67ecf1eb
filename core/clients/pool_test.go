package clients

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/observability"
	"github.com/leofalp/astral/providers/observability/slogobs"
)

type fakeClient struct {
	provider string
	mode     ai.ClientMode
	cfg      ai.ClientConfig
}

func (c *fakeClient) Provider() string    { return c.provider }
func (c *fakeClient) Mode() ai.ClientMode { return c.mode }

// fakeFactories builds fakeClients and counts constructions.
type fakeFactories struct {
	built atomic.Int64
	fail  error
}

func (f *fakeFactories) ClientFactory(provider string, mode ai.ClientMode) (ai.ClientFactory, error) {
	if provider == "unknown" {
		return nil, errs.NotFound(errs.KindProvider, "", provider)
	}
	return func(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
		if f.fail != nil {
			return nil, f.fail
		}
		f.built.Add(1)
		return &fakeClient{provider: provider, mode: mode, cfg: cfg}, nil
	}, nil
}

func TestKey(t *testing.T) {
	cfg := &ai.ClientConfig{APIKey: "k1"}
	other := &ai.ClientConfig{APIKey: "k2"}

	tests := []struct {
		name string
		opts Options
		want func(string) bool
	}{
		{"provider only", Options{}, func(k string) bool { return k == "openai" }},
		{"zero config", Options{Config: &ai.ClientConfig{}}, func(k string) bool { return k == "openai" }},
		{"async", Options{Mode: ai.ClientModeAsync}, func(k string) bool { return k == "openai.async" }},
		{"explicit key", Options{Key: "mine", Config: cfg}, func(k string) bool { return k == "mine" }},
		{"explicit async key", Options{Key: "mine", Mode: ai.ClientModeAsync}, func(k string) bool { return k == "mine.async" }},
		{"config digest", Options{Config: cfg}, func(k string) bool {
			return strings.HasPrefix(k, "openai_") && len(k) == len("openai_")+16
		}},
		{"digest depends on config", Options{Config: other}, func(k string) bool {
			return k != Key("openai", Options{Config: cfg}) && strings.HasPrefix(k, "openai_")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key("openai", tt.opts); !tt.want(got) {
				t.Errorf("Key() = %q", got)
			}
		})
	}

	if Key("openai", Options{Config: cfg}) != Key("openai", Options{Config: &ai.ClientConfig{APIKey: "k1"}}) {
		t.Error("Key() is not deterministic for equal configs")
	}
}

func TestPoolGetCaches(t *testing.T) {
	factories := &fakeFactories{}
	pool := NewPool(factories, WithConfigSource(func(provider string) ai.ClientConfig {
		return ai.ClientConfig{APIKey: provider + "-key"}
	}))
	ctx := context.Background()

	first, err := pool.Get(ctx, "openai", Options{})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := pool.Get(ctx, "openai", Options{})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first != second {
		t.Error("Get() built a second client for the same key")
	}
	if first.(*fakeClient).cfg.APIKey != "openai-key" {
		t.Errorf("config source not used: %+v", first.(*fakeClient).cfg)
	}

	async, err := pool.Get(ctx, "openai", Options{Mode: ai.ClientModeAsync})
	if err != nil {
		t.Fatalf("Get(async) error = %v", err)
	}
	if async == first || async.Mode() != ai.ClientModeAsync {
		t.Error("async client shares the sync slot")
	}

	override, err := pool.Get(ctx, "openai", Options{Config: &ai.ClientConfig{APIKey: "other"}})
	if err != nil {
		t.Fatal(err)
	}
	if override == first || override.(*fakeClient).cfg.APIKey != "other" {
		t.Error("explicit config did not get its own client")
	}

	if factories.built.Load() != 3 || pool.Len() != 3 {
		t.Errorf("built %d clients, pool holds %d; want 3 and 3", factories.built.Load(), pool.Len())
	}
}

func TestPoolGetNew(t *testing.T) {
	pool := NewPool(&fakeFactories{})
	ctx := context.Background()

	if _, err := pool.Get(ctx, "openai", Options{New: true}); !errors.Is(err, errs.ErrClientKeyRequired) {
		t.Fatalf("Get(New without key) error = %v, want ErrClientKeyRequired", err)
	}

	first, err := pool.Get(ctx, "openai", Options{Key: "batch"})
	if err != nil {
		t.Fatal(err)
	}
	again, err := pool.Get(ctx, "openai", Options{Key: "batch", New: true})
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Error("Get(New) replaced the client already held under its key")
	}

	if !pool.Unregister("openai", Options{Key: "batch"}) {
		t.Fatal("Unregister() = false")
	}
	fresh, err := pool.Get(ctx, "openai", Options{Key: "batch", New: true})
	if err != nil {
		t.Fatal(err)
	}
	if fresh == first {
		t.Error("Get(New) after Unregister returned the old client")
	}
}

func TestPoolGetErrors(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(&fakeFactories{fail: boom})
	ctx := context.Background()

	if _, err := pool.Get(ctx, "unknown", Options{}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Get(unknown provider) error = %v", err)
	}
	if _, err := pool.Get(ctx, "openai", Options{}); !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want factory error", err)
	}
	if pool.Len() != 0 {
		t.Errorf("failed constructions were cached: Len() = %d", pool.Len())
	}
}

func TestPoolRegisterUnregister(t *testing.T) {
	pool := NewPool(&fakeFactories{})
	client := &fakeClient{provider: "anthropic", mode: ai.ClientModeAsync}

	key := pool.Register("anthropic", client, Options{})
	if key != "anthropic.async" {
		t.Errorf("Register() key = %q, want mode taken from the client", key)
	}

	got, err := pool.Get(context.Background(), "anthropic", Options{Mode: ai.ClientModeAsync})
	if err != nil || got != client {
		t.Errorf("Get() = %v, %v; want the registered client", got, err)
	}

	if !pool.Unregister("anthropic", Options{Mode: ai.ClientModeAsync}) {
		t.Error("Unregister() = false for a registered client")
	}
	if pool.Unregister("anthropic", Options{Mode: ai.ClientModeAsync}) {
		t.Error("Unregister() = true twice")
	}
	if _, err := pool.ByKey(key); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("ByKey() after Unregister error = %v", err)
	}
}

func TestPoolAllAndClear(t *testing.T) {
	pool := NewPool(&fakeFactories{})
	ctx := context.Background()
	for _, provider := range []string{"openai", "gemini"} {
		if _, err := pool.Get(ctx, provider, Options{}); err != nil {
			t.Fatal(err)
		}
	}

	all := pool.All()
	if len(all) != 2 || all["openai"] == nil || all["gemini"] == nil {
		t.Fatalf("All() = %v", all)
	}
	delete(all, "openai")
	if pool.Len() != 2 {
		t.Error("All() returned the live map")
	}

	pool.Clear()
	if pool.Len() != 0 {
		t.Errorf("Len() after Clear() = %d", pool.Len())
	}
}

func TestPoolConcurrentGet(t *testing.T) {
	factories := &fakeFactories{}
	pool := NewPool(factories)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]ai.Client, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := pool.Get(ctx, "deepseek", Options{})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = client
		}(i)
	}
	wg.Wait()

	for _, c := range results[1:] {
		if c != results[0] {
			t.Fatal("concurrent Get() returned different clients for one key")
		}
	}
	if pool.Len() != 1 {
		t.Errorf("Len() = %d, want 1", pool.Len())
	}
}

func TestPoolObserver(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(slogobs.WithOutput(&buf), slogobs.WithLevel(slog.LevelDebug))
	pool := NewPool(&fakeFactories{}, WithObserver(observer))
	ctx := context.Background()

	for range 3 {
		if _, err := pool.Get(ctx, "openai", Options{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := pool.Get(ctx, "openai", Options{Mode: ai.ClientModeAsync}); err != nil {
		t.Fatal(err)
	}

	if got := observer.CounterValue(observability.MetricClientsCreated); got != 2 {
		t.Errorf("%s = %d, want 2", observability.MetricClientsCreated, got)
	}
	if !strings.Contains(buf.String(), "client created") {
		t.Errorf("log output missing creation event:\n%s", buf.String())
	}
}
