package prayer

import (
	"errors"
	"testing"
)

func TestProviderErrorKinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := error(NewNetworkError(DiyanetProvider, "request failed", cause))

	if !errors.Is(err, ErrNetwork) {
		t.Fatal("expected network kind")
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatal("network error must not match malformed")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be unwrapped")
	}
	if err.Error() != "request failed: dial tcp: connection refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	noData := NewNoDataError(AladhanProvider, "")
	if noData.Error() != ErrNoUsableData.Error() {
		t.Fatalf("expected kind text as fallback message, got %q", noData.Error())
	}
}

func TestAggregationErrorMessage(t *testing.T) {
	explicit := &AggregationError{Selector: EmushafProvider}
	if explicit.Error() != "emushaf returned no data: unknown error" {
		t.Fatalf("unexpected message %q", explicit.Error())
	}
}
