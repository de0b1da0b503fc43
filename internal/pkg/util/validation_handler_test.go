package util

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" validate:"required,max=5"`
	Flags []string `json:"flags" validate:"max=2,dive,min=1"`
}

func TestValidateDTO(t *testing.T) {
	assert.NoError(t, ValidateDTO(&sample{Name: "ok"}))

	err := ValidateDTO(&sample{Name: "too-long-name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[name]")
	assert.Contains(t, err.Error(), "[max]")

	var ve validator.ValidationErrors
	assert.True(t, errors.As(err, &ve))

	err = ValidateDTO(&sample{Name: "a", Flags: []string{""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min")
}
