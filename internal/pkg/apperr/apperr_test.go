package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindNoSources, "nothing to summarize")
	if KindOf(err) != KindNoSources {
		t.Errorf("KindOf = %q, want %q", KindOf(err), KindNoSources)
	}

	wrapped := fmt.Errorf("generate digest: %w", err)
	if KindOf(wrapped) != KindNoSources {
		t.Errorf("KindOf(wrapped) = %q, want %q", KindOf(wrapped), KindNoSources)
	}

	if KindOf(errors.New("plain")) != "" {
		t.Error("plain errors have no kind")
	}
	if KindOf(nil) != "" {
		t.Error("nil has no kind")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KindRemote, "boom"))
	if !Is(err, KindRemote) {
		t.Error("Is must match through wrapping")
	}
	if Is(err, KindTransport) {
		t.Error("Is must not match a different kind")
	}
}
