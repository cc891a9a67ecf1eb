package observability

// --- Attribute keys ---

const (
	// AttrProvider is the provider key, e.g. "openai" or "azureOpenAI"
	AttrProvider = "astral.provider"

	// AttrModel is the canonical model version a request targets
	AttrModel = "astral.model"

	// AttrModelAlias is the stable alias of the resolved catalog entry
	AttrModelAlias = "astral.model.alias"

	// AttrModelIdentifier is the identifier exactly as the caller passed it
	AttrModelIdentifier = "astral.model.identifier"

	// AttrModelType is the model type, e.g. "llm"
	AttrModelType = "astral.model_type"

	// AttrSource names the file or embedded document a table was loaded from
	AttrSource = "astral.source"

	AttrProvidersCount = "astral.providers.count"
	AttrModelsCount    = "astral.models.count"
	AttrProblems       = "astral.problems"

	AttrConverter  = "astral.converter"
	AttrOutputType = "astral.converter.output_type"

	AttrClientKey    = "astral.client.key"
	AttrClientMode   = "astral.client.mode"
	AttrClientImport = "astral.client.import"

	// AttrFeature is a capability flag name, e.g. "function_call"
	AttrFeature = "astral.feature"

	// AttrRequestID is the identifier assigned to a prepared request
	AttrRequestID = "astral.request.id"

	AttrMessagesCount = "astral.request.messages_count"

	AttrStatus            = "status"
	AttrStatusDescription = "status.description"
	AttrError             = "error"
)

// --- Span names ---

const (
	SpanCatalogLoad  = "astral.catalog.load"
	SpanRegistryLoad = "astral.registry.load"
	SpanPrepare      = "astral.binding.prepare"
)

// --- Metric names ---

const (
	MetricCatalogModelsLoaded     = "catalog.models.loaded"
	MetricRegistryProvidersLoaded = "registry.providers.loaded"
	MetricClientsCreated          = "clients.pool.created"
	MetricPrepareDuration         = "binding.prepare.duration"
	MetricFeatureRejections       = "binding.feature.rejected"
)
