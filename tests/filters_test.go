package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/kubousky/dotmap/business_flow"
)

func TestParseTagIDs(t *testing.T) {
	t.Run("empty input means no filter", func(t *testing.T) {
		ids, err := businessflow.ParseTagIDs("")
		require.NoError(t, err)
		assert.Nil(t, ids)
	})

	t.Run("single id", func(t *testing.T) {
		ids, err := businessflow.ParseTagIDs("7")
		require.NoError(t, err)
		assert.Equal(t, []uint{7}, ids)
	})

	t.Run("multiple ids", func(t *testing.T) {
		ids, err := businessflow.ParseTagIDs("1,2,3")
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2, 3}, ids)
	})

	t.Run("whitespace around ids is tolerated", func(t *testing.T) {
		ids, err := businessflow.ParseTagIDs(" 4 , 5 ")
		require.NoError(t, err)
		assert.Equal(t, []uint{4, 5}, ids)
	})

	t.Run("rejects non-numeric entries", func(t *testing.T) {
		_, err := businessflow.ParseTagIDs("1,abc")
		assert.ErrorIs(t, err, businessflow.ErrInvalidTagFilter)
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := businessflow.ParseTagIDs("0")
		assert.ErrorIs(t, err, businessflow.ErrInvalidTagFilter)
	})

	t.Run("rejects negative numbers", func(t *testing.T) {
		_, err := businessflow.ParseTagIDs("-3")
		assert.ErrorIs(t, err, businessflow.ErrInvalidTagFilter)
	})

	t.Run("rejects empty entries", func(t *testing.T) {
		_, err := businessflow.ParseTagIDs("1,,2")
		assert.ErrorIs(t, err, businessflow.ErrInvalidTagFilter)
	})
}

func TestParseAssignedOnly(t *testing.T) {
	assert.True(t, businessflow.ParseAssignedOnly("1"))
	assert.True(t, businessflow.ParseAssignedOnly("true"))
	assert.True(t, businessflow.ParseAssignedOnly("True"))
	assert.False(t, businessflow.ParseAssignedOnly(""))
	assert.False(t, businessflow.ParseAssignedOnly("0"))
	assert.False(t, businessflow.ParseAssignedOnly("false"))
	assert.False(t, businessflow.ParseAssignedOnly("yes"))
}
