package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Name        Optional[string] `json:"name"`
		Description Optional[string] `json:"description"`
		Count       Optional[int]    `json:"count"`
	}

	// Поле отсутствует, поле null и поле со значением различимы.
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"description": null, "count": 5}`), &p))

	assert.False(t, p.Name.Set)
	assert.False(t, p.Name.HasValue())
	assert.Nil(t, p.Name.Ptr())

	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)
	assert.False(t, p.Description.HasValue())
	assert.Nil(t, p.Description.Ptr())

	require.True(t, p.Count.HasValue())
	assert.Equal(t, 5, p.Count.Value)
	require.NotNil(t, p.Count.Ptr())
	assert.Equal(t, 5, *p.Count.Ptr())
}

func TestOptional_MarshalJSON(t *testing.T) {
	set := Optional[string]{Set: true, Value: "hello"}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(data))

	null := Optional[string]{Set: true, Null: true}
	data, err = json.Marshal(null)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
