package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromResponseUsesDetail(t *testing.T) {
	err := FromResponse(http.StatusBadRequest, []byte(`{"detail":"Insufficient tokens"}`))

	assert.Equal(t, "Insufficient tokens", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFromResponseFallsBackToStatus(t *testing.T) {
	cases := map[string][]byte{
		"empty body":        nil,
		"not json":          []byte("<html>bad gateway</html>"),
		"detail not string": []byte(`{"detail":[{"loc":["body","rating"],"msg":"too large"}]}`),
		"blank detail":      []byte(`{"detail":"  "}`),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := FromResponse(http.StatusBadGateway, body)
			assert.Equal(t, "API Error: 502", err.Error())
			assert.Equal(t, ErrAPI.Code, err.Code)
		})
	}
}

func TestFromResponseMapsStatusCodes(t *testing.T) {
	assert.True(t, errors.Is(FromResponse(http.StatusNotFound, nil), ErrNotFound))
	assert.True(t, errors.Is(FromResponse(http.StatusUnauthorized, nil), ErrUnauthorized))
	assert.True(t, errors.Is(FromResponse(http.StatusForbidden, nil), ErrForbidden))
	assert.False(t, errors.Is(FromResponse(http.StatusForbidden, nil), ErrNotFound))
}

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrValidation, "rating must be between 1 and 5")

	assert.Equal(t, "rating must be between 1 and 5", clone.Error())
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.EqualError(t, wrapped.Unwrap(), "boom")

	typed := FromError(fmt.Errorf("ctx: %w", ErrActionInFlight))
	assert.Same(t, ErrActionInFlight, typed)
}
