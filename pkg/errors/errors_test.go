package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusNotFound, KindUnknown},
		{http.StatusConflict, KindUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, KindFromStatus(tc.status), "status %d", tc.status)
	}
}

func TestFromStatusMessageFallback(t *testing.T) {
	err := FromStatus(http.StatusInternalServerError, "")
	assert.Equal(t, "request failed with status 500", err.Message)

	err = FromStatus(http.StatusUnprocessableEntity, "subject is required")
	assert.Equal(t, "subject is required", err.Message)
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
}

func TestNormalizeIdempotent(t *testing.T) {
	orig := FromStatus(http.StatusUnauthorized, "token expired")
	again := Normalize(orig)
	assert.Same(t, orig, again)

	wrapped := fmt.Errorf("calling backend: %w", orig)
	assert.Same(t, orig, Normalize(wrapped))
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}

func TestNormalizeForeignError(t *testing.T) {
	err := Normalize(errors.New("network is unreachable"))
	require.NotNil(t, err)
	assert.Equal(t, KindNetwork, err.Kind)

	err = Normalize(errors.New("something odd happened"))
	assert.Equal(t, KindUnknown, err.Kind)
}

func TestFromTransportContext(t *testing.T) {
	err := FromTransport(context.Canceled)
	require.NotNil(t, err)
	assert.Equal(t, KindNetwork, err.Kind)
	assert.Equal(t, "request canceled", err.Message)

	err = FromTransport(context.DeadlineExceeded)
	assert.Equal(t, "request timed out", err.Message)
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(FromStatus(500, ""), KindServer))
	assert.False(t, IsKind(nil, KindServer))
}
