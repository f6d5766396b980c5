package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestE(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := E(ExternalIO, "brochure unreachable", cause)

	var appErr *Error
	assert.True(t, As(err, &appErr))
	assert.Equal(t, ExternalIO, appErr.Kind)
	assert.Equal(t, "brochure unreachable", err.Error())
	assert.True(t, Is(err, cause))
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "boom", E(Internal, errors.New("boom")).Error())
	assert.Equal(t, "entity not found", E(NotFound).Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading course: %w", NewNotFoundError("Course not found"))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, NotFound))
	assert.Equal(t, Other, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, Other))
}

func TestStatusCode(t *testing.T) {
	cases := map[Kind]int{
		Invalid:      http.StatusBadRequest,
		ExternalIO:   http.StatusBadRequest,
		Unauthorized: http.StatusUnauthorized,
		Forbidden:    http.StatusForbidden,
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		Internal:     http.StatusInternalServerError,
		Other:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.StatusCode(), kind.String())
	}
}
