package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindTransient, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("load chapter: %w", NotFound("chapter %d not found", 3))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestUnwrap(t *testing.T) {
	err := Transient(sql.ErrConnDone, "connection lost")

	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.True(t, errors.Is(err, ErrTransient))
}

func TestPublic_HidesInternalDetail(t *testing.T) {
	msg, details := Public(Internal(errors.New("pq: relation does not exist"), "query failed"))
	assert.Equal(t, "internal server error", msg)
	assert.Nil(t, details)

	msg, details = Public(ValidationWithDetails("validation failed", map[string]string{"title": "is required"}))
	assert.Equal(t, "validation failed", msg)
	assert.Equal(t, "is required", details["title"])
}
