package binding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/clients"
	"github.com/leofalp/astral/core/cost"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/core/registry"
	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/observability"
)

// Binder resolves provider and model pairs into bindings and prepared
// requests. It is safe for concurrent use.
type Binder struct {
	catalog  *catalog.Catalog
	bound    *registry.Bound
	pool     *clients.Pool
	observer observability.Provider
	now      func() time.Time
}

type options struct {
	bindings *registry.Bindings
	config   clients.ConfigSource
	observer observability.Provider
}

// Option configures a Binder.
type Option func(*options)

// WithBindings replaces DefaultBindings as the table registry names are
// resolved against.
func WithBindings(table *registry.Bindings) Option {
	return func(o *options) {
		o.bindings = table
	}
}

// WithConfigSource sets where client configuration comes from.
func WithConfigSource(source clients.ConfigSource) Option {
	return func(o *options) {
		o.config = source
	}
}

// WithObserver reports binding activity through observer.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// New binds reg against the binding table and cross-checks it with cat.
// Every unresolved name and every catalog model type without a converter
// is reported in a single *errs.ValidationError.
func New(cat *catalog.Catalog, reg *registry.Registry, opts ...Option) (*Binder, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.bindings == nil {
		o.bindings = DefaultBindings()
	}

	bound, err := reg.Bind(cat, o.bindings)
	if err != nil {
		return nil, err
	}

	poolOpts := []clients.Option{clients.WithObserver(o.observer)}
	if o.config != nil {
		poolOpts = append(poolOpts, clients.WithConfigSource(o.config))
	}

	return &Binder{
		catalog:  cat,
		bound:    bound,
		pool:     clients.NewPool(bound, poolOpts...),
		observer: o.observer,
		now:      time.Now,
	}, nil
}

func (b *Binder) Catalog() *catalog.Catalog   { return b.catalog }
func (b *Binder) Registry() *registry.Registry { return b.bound.Registry() }
func (b *Binder) Pool() *clients.Pool          { return b.pool }

// Bind resolves identifier for provider and returns its adapter and
// converter.
func (b *Binder) Bind(provider, identifier string) (Binding, error) {
	model, err := b.catalog.Resolve(provider, identifier)
	if err != nil {
		return Binding{}, err
	}
	adapter, err := b.bound.Registry().Adapter(provider)
	if err != nil {
		return Binding{}, err
	}
	desc, err := b.bound.Registry().Converter(provider, model.ModelType)
	if err != nil {
		return Binding{}, err
	}
	conv, err := b.bound.MessageConverter(provider, model.ModelType)
	if err != nil {
		return Binding{}, err
	}

	return Binding{
		Model:            model,
		Adapter:          adapter,
		Converter:        desc,
		MessageConverter: conv,
	}, nil
}

// Prepare resolves the model, checks opts against its features and
// converts messages into the provider's message type.
func (b *Binder) Prepare(ctx context.Context, provider, identifier string, messages []ai.Message, opts PrepareOptions) (req *PreparedRequest, err error) {
	start := time.Now()

	observer := b.observerFor(ctx)
	var span observability.Span
	if observer != nil {
		ctx = observability.ContextWithObserver(ctx, observer)
		ctx, span = observer.StartSpan(ctx, observability.SpanPrepare,
			observability.String(observability.AttrProvider, provider),
			observability.String(observability.AttrModelIdentifier, identifier),
			observability.Int(observability.AttrMessagesCount, len(messages)),
		)
		defer func() {
			observer.Histogram(observability.MetricPrepareDuration).Record(ctx, time.Since(start).Seconds(),
				observability.String(observability.AttrProvider, provider),
			)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, err.Error())
			} else {
				span.SetAttributes(
					observability.String(observability.AttrRequestID, req.ID),
					observability.String(observability.AttrModel, req.Model),
					observability.String(observability.AttrModelAlias, req.Alias),
				)
				span.SetStatus(observability.StatusOK, "")
			}
			span.End()
		}()
	}

	binding, err := b.Bind(provider, identifier)
	if err != nil {
		return nil, err
	}
	model := binding.Model
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrModelType, string(model.ModelType)),
			observability.String(observability.AttrConverter, binding.Converter.QualifiedConverter()),
			observability.String(observability.AttrOutputType, binding.Converter.QualifiedType()),
		)
	}

	if err := b.checkFeatures(ctx, model, opts); err != nil {
		return nil, err
	}

	payload, err := binding.MessageConverter.ConvertMessages(messages, binding.ConvertOptions())
	if err != nil {
		// Converters shared between providers report their own name.
		var fe *errs.FeatureNotSupportedError
		if errors.As(err, &fe) {
			fe.Provider = provider
			b.countRejection(ctx, provider, fe.Feature)
		}
		return nil, err
	}

	return &PreparedRequest{
		ID:               uuid.NewString(),
		Provider:         provider,
		Alias:            model.Alias,
		Model:            model.AliasMappedModel,
		ModelType:        model.ModelType,
		OutputType:       binding.MessageConverter.OutputType(),
		Messages:         payload,
		ReasoningEffort:  opts.ReasoningEffort,
		StructuredOutput: opts.StructuredOutput,
		Features:         model.SupportedFeatures,
		Cost:             model.Cost(),
		CreatedAt:        b.now().UTC(),
	}, nil
}

func (b *Binder) checkFeatures(ctx context.Context, model catalog.ModelDescriptor, opts PrepareOptions) error {
	var feature catalog.Feature
	switch {
	case opts.ReasoningEffort != "" && !opts.ReasoningEffort.Valid():
		_, err := ParseReasoningEffort(string(opts.ReasoningEffort))
		return err
	case opts.ReasoningEffort != "" && !model.Supports(catalog.FeatureReasoningEffort):
		feature = catalog.FeatureReasoningEffort
	case opts.StructuredOutput && !model.Supports(catalog.FeatureStructuredOutput):
		feature = catalog.FeatureStructuredOutput
	case opts.Tools && !model.Supports(catalog.FeatureFunctionCall):
		feature = catalog.FeatureFunctionCall
	default:
		return nil
	}

	b.countRejection(ctx, model.Provider, string(feature))
	return &errs.FeatureNotSupportedError{
		Provider: model.Provider,
		Model:    model.AliasMappedModel,
		Feature:  string(feature),
	}
}

// observerFor prefers an observer attached to ctx over the Binder's own.
func (b *Binder) observerFor(ctx context.Context) observability.Provider {
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		return observer
	}
	return b.observer
}

func (b *Binder) countRejection(ctx context.Context, provider, feature string) {
	observer := observability.ObserverFromContext(ctx)
	if observer == nil {
		return
	}
	observer.Counter(observability.MetricFeatureRejections).Add(ctx, 1,
		observability.String(observability.AttrProvider, provider),
		observability.String(observability.AttrFeature, feature),
	)
}

// Client returns a pooled client for provider.
func (b *Binder) Client(ctx context.Context, provider string, opts clients.Options) (ai.Client, error) {
	return b.pool.Get(ctx, provider, opts)
}

// EstimateCost prices usage at the rates of the resolved model.
func (b *Binder) EstimateCost(provider, identifier string, usage ai.Usage) (cost.Breakdown, error) {
	model, err := b.catalog.Resolve(provider, identifier)
	if err != nil {
		return cost.Breakdown{}, err
	}
	return model.Cost().Calculate(usage.PromptTokens, usage.CachedTokens, usage.CompletionTokens), nil
}
