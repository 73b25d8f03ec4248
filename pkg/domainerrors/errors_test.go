package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		err := New(CodeBadgeInUse, "badge 4 already on loan")
		assert.Equal(t, CodeBadgeInUse, CodeOf(err))
	})

	t.Run("wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("register entry: %w", New(CodePermitExpired, "permit expired"))
		assert.Equal(t, CodePermitExpired, CodeOf(err))
		assert.True(t, Is(err, CodePermitExpired))
	})

	t.Run("plain error defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "commit entry transaction")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "commit entry transaction")

	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeContractorNotFound, http.StatusNotFound},
		{CodeActiveEntryNotFound, http.StatusNotFound},
		{CodeEntryNotFound, http.StatusNotFound},
		{CodeContractorBlacklisted, http.StatusBadRequest},
		{CodePermitExpired, http.StatusBadRequest},
		{CodeActiveEntryExists, http.StatusBadRequest},
		{CodeBadgeUnavailable, http.StatusBadRequest},
		{CodeBadgeInUse, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.code), "code %s", tc.code)
	}
}
