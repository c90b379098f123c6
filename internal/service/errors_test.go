package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorAccumulates(t *testing.T) {
	ve := &ValidationError{}
	require.NoError(t, ve.orNil())

	ve.add("tag", "tag is required")
	ve.add("title", "title is required")

	err := ve.orNil()
	require.Error(t, err)

	got, ok := AsValidationError(err)
	require.True(t, ok)
	require.Len(t, got.Errors, 2)
	require.Equal(t, "tag", got.Errors[0].Field)

	_, ok = AsValidationError(errors.New("plain"))
	require.False(t, ok)
}
