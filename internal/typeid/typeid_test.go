package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndValidate(t *testing.T) {
	id := NewObjectID()
	assert.True(t, strings.HasPrefix(id, "obj_"))
	assert.NotEqual(t, id, NewObjectID())

	prefix, err := Prefix(id)
	require.NoError(t, err)
	assert.Equal(t, PrefixObject, prefix)

	assert.NoError(t, Validate(id, PrefixObject))
	assert.ErrorIs(t, Validate(id, PrefixProject), ErrInvalidID)
	assert.ErrorIs(t, Validate("proj_playground", PrefixProject), ErrInvalidID)
}
