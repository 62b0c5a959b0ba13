package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "record not found"},
			want: "record not found",
		},
		{
			name: "error with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "failed to grant", Cause: errors.New("store down")},
			want: "failed to grant: store down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")
	assert.ErrorIs(t, err, cause)
}

func TestConstructors(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsNotFound(NotFoundf("record %q", "a@example.com")))
	assert.Equal(t, `record "a@example.com"`, NotFoundf("record %q", "a@example.com").Message)
	assert.True(t, IsValidation(Validation("bad")))
	assert.True(t, IsInternal(Internal("boom")))

	fieldErr := ValidationField("email", "invalid email address")
	assert.True(t, IsValidation(fieldErr))
	assert.Equal(t, "email", GetField(fieldErr))
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "x %d", 1))
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errors.New("dial"), ErrCodeUnavailable, "store %s", "mongo")
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, "store mongo: dial", err.Error())
}

func TestGetCode_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("missing"))
	assert.Equal(t, ErrCodeNotFound, GetCode(err))
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetField(errors.New("plain")))
	assert.False(t, IsConflict(errors.New("plain")))
}
