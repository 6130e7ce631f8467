package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Status(t *testing.T) {
	cases := map[Kind]int{
		InputError:          http.StatusBadRequest,
		UpstreamUnavailable: http.StatusBadGateway,
		ProbeEmpty:          http.StatusUnprocessableEntity,
		ClipFailure:         http.StatusUnprocessableEntity,
		EnhancementFailure:  http.StatusUnprocessableEntity,
		Timeout:             http.StatusGatewayTimeout,
		Cancelled:           499,
		Internal:            http.StatusInternalServerError,
		Kind("unknown"):     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), "kind %q", kind)
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(UpstreamUnavailable, "probe failed", cause)
	assert.Equal(t, "probe failed: connection refused", e.Error())
	assert.Equal(t, cause, e.Unwrap())

	bare := New(InputError, "url is required")
	assert.Equal(t, "url is required", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestAs_ExtractsFromWrappedChain(t *testing.T) {
	inner := New(ProbeEmpty, "no usable signal")
	wrapped := errors.New("handler: ") // not wrapping inner, sanity check the negative case
	_, ok := As(wrapped)
	assert.False(t, ok)

	chained := fmt.Errorf("handler: %w", inner)
	got, ok := As(chained)
	assert.True(t, ok)
	assert.Equal(t, ProbeEmpty, got.Kind)
}
