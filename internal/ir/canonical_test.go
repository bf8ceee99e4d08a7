package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"step":   10,
		"name":   "Detector_main",
		"neuron": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Detector_main","neuron":2,"step":10}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(data))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	data, err := MarshalCanonical("Cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"Caf\u00e9\"", string(data))
}

func TestMarshalCanonical_Forbidden(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"weight": 0.5})
	assert.ErrorContains(t, err, "floats are forbidden")

	_, err = MarshalCanonical([]any{nil})
	assert.ErrorContains(t, err, "null is forbidden")

	_, err = MarshalCanonical(struct{}{})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestMarshalCanonical_Nested(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"trace": []map[string]any{
			{"step": 1, "neuron": 0},
		},
		"ids": []int{3, 1},
		"ok":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ids":[3,1],"ok":true,"trace":[{"neuron":0,"step":1}]}`, string(data))
}
