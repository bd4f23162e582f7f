package validator

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Category string `json:"category" validate:"omitempty,max=5"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Internal string `validate:"omitempty,oneof=a b"`
}

func TestDetails(t *testing.T) {
	err := Validate(&sample{Category: "restaurant", Limit: 100, Internal: "c"})
	require.Error(t, err)

	assert.Equal(t, map[string]interface{}{
		"category": "max",
		"limit":    "max",
		"Internal": "oneof",
	}, Details(err))
}

func TestDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, Details(stderrors.New("boom")))
	assert.Nil(t, Details(nil))
	assert.NoError(t, Validate(&sample{}))
}
