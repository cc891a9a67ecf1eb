package ai

// ConvertOptions carries the per-model facts a converter needs. They come
// from the resolved catalog entry, so converters never consult the catalog
// themselves.
type ConvertOptions struct {
	Model string // canonical model version

	SystemMessage    bool
	DeveloperMessage bool
	ImageIngestion   bool
	FunctionCall     bool
}

// MessageConverter turns a provider-agnostic conversation into the message
// type a provider SDK expects.
type MessageConverter interface {
	// Name is the identifier the adapter registry uses for this converter.
	Name() string

	// OutputType is the qualified name of the value ConvertMessages returns,
	// e.g. "github.com/sashabaranov/go-openai.ChatCompletionMessage".
	OutputType() string

	ConvertMessages(messages []Message, opts ConvertOptions) (any, error)
}

// ConverterFunc is the function shape behind a MessageConverter.
type ConverterFunc func(messages []Message, opts ConvertOptions) (any, error)

type namedConverter struct {
	name       string
	outputType string
	fn         ConverterFunc
}

// NewConverter wraps fn as a MessageConverter.
func NewConverter(name, outputType string, fn ConverterFunc) MessageConverter {
	return &namedConverter{name: name, outputType: outputType, fn: fn}
}

func (c *namedConverter) Name() string       { return c.name }
func (c *namedConverter) OutputType() string { return c.outputType }

func (c *namedConverter) ConvertMessages(messages []Message, opts ConvertOptions) (any, error) {
	return c.fn(messages, opts)
}
