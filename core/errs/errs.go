package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("astral: not found")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("astral: validation failed")

	// ErrFeatureNotSupported is matched by every *FeatureNotSupportedError.
	ErrFeatureNotSupported = errors.New("astral: feature not supported")

	// ErrClientKeyRequired is returned when a fresh client is requested
	// without a key to store it under.
	ErrClientKeyRequired = errors.New("astral: client key is required when requesting a new client")

	// ErrAmbiguousModel is returned when a model identifier belongs to more
	// than one provider and no provider was given.
	ErrAmbiguousModel = errors.New("astral: model identifier is served by more than one provider")

	// ErrMessagesRequired is returned when a conversion is asked for an empty
	// conversation.
	ErrMessagesRequired = errors.New("astral: at least one message is required")

	// ErrInvalidMessageRole is returned for messages whose role no provider understands.
	ErrInvalidMessageRole = errors.New("astral: invalid message role")

	// ErrMissingCredentials is returned by client factories when no API key is configured.
	ErrMissingCredentials = errors.New("astral: API key is not set")
)

// Kind names the table a lookup was performed against.
type Kind string

const (
	KindProvider      Kind = "provider"
	KindModel         Kind = "model"
	KindModelType     Kind = "model type"
	KindConverter     Kind = "message converter"
	KindClientFactory Kind = "client constructor"
	KindClient        Kind = "client"
)

// NotFoundError reports a lookup miss. Provider is empty when the miss
// happened at provider level.
type NotFoundError struct {
	Kind     Kind
	Provider string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Provider == "" || e.Kind == KindProvider {
		return fmt.Sprintf("astral: %s %q not found", e.Kind, e.Key)
	}
	return fmt.Sprintf("astral: %s %q not found for provider %q", e.Kind, e.Key, e.Provider)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound is shorthand for building a *NotFoundError.
func NotFound(kind Kind, provider, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Provider: provider, Key: key}
}

// ValidationError collects every problem found while loading Source. It is
// returned whole so a broken file can be fixed in one pass.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("astral: invalid ")
	b.WriteString(e.Source)
	switch len(e.Problems) {
	case 0:
	case 1:
		b.WriteString(": ")
		b.WriteString(e.Problems[0])
	default:
		fmt.Fprintf(&b, ": %d problems: ", len(e.Problems))
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Addf records one problem.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Err returns e when at least one problem was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// FeatureNotSupportedError is returned when a request needs a capability the
// resolved model does not declare.
type FeatureNotSupportedError struct {
	Provider string
	Model    string
	Feature  string
}

func (e *FeatureNotSupportedError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("astral: model %q does not support %s", e.Model, e.Feature)
	}
	return fmt.Sprintf("astral: model %q of provider %q does not support %s", e.Model, e.Provider, e.Feature)
}

// Is lets errors.Is(err, ErrFeatureNotSupported) match.
func (e *FeatureNotSupportedError) Is(target error) bool {
	return target == ErrFeatureNotSupported
}
