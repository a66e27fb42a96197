package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(Required("name")))
	assert.Equal(t, http.StatusConflict, StatusOf(fmt.Errorf("wrapped: %w", Conflict("Role already exists"))))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("Something went wrong", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Something went wrong", err.Message)
}

func TestRequiredMessage(t *testing.T) {
	assert.Equal(t, "email is required", Required("email").Message)
}
