package prayer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork covers unreachable upstreams and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is a 2xx response with an unrecognized or incomplete shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoUsableData is returned when a provider produced an empty result set.
	ErrNoUsableData = errors.New("no usable data")
	// ErrUnknownProvider is returned for selectors that name no registered provider.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ProviderError is the failure type every adapter returns.
type ProviderError struct {
	Provider string
	Kind     error // one of the sentinel errors above
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Reason
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is lets errors.Is match the error kind.
func (e *ProviderError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewNetworkError builds a ProviderError of kind ErrNetwork.
func NewNetworkError(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrNetwork, Reason: reason, Err: err}
}

// NewMalformedError builds a ProviderError of kind ErrMalformedResponse.
func NewMalformedError(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrMalformedResponse, Reason: reason, Err: err}
}

// NewNoDataError builds a ProviderError of kind ErrNoUsableData.
func NewNoDataError(provider, reason string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrNoUsableData, Reason: reason}
}

// Attempt records why one provider did not yield data.
type Attempt struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// AggregationError is returned when no candidate provider yielded usable data.
type AggregationError struct {
	Selector string
	Attempts []Attempt
}

func (e *AggregationError) Error() string {
	if e.Selector == AutoProvider {
		parts := make([]string, 0, len(e.Attempts))
		for _, a := range e.Attempts {
			parts = append(parts, a.Provider+": "+a.Reason)
		}
		return "no provider returned data: " + strings.Join(parts, "; ")
	}

	reason := "unknown error"
	for _, a := range e.Attempts {
		if a.Provider == e.Selector {
			reason = a.Reason
			break
		}
	}
	return fmt.Sprintf("%s returned no data: %s", e.Selector, reason)
}

// Reasons returns the failure reason per attempted provider.
func (e *AggregationError) Reasons() map[string]string {
	out := make(map[string]string, len(e.Attempts))
	for _, a := range e.Attempts {
		out[a.Provider] = a.Reason
	}
	return out
}
