package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"leaky_integrate", KindLeakyIntegrate},
		{"Instant-Decay", KindInstantDecay},
		{" passive_relay ", KindPassiveRelay},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("izhikevich")
	assert.Error(t, err)
}

func TestKind_ZeroValueInvalid(t *testing.T) {
	var k Kind
	assert.False(t, k.Valid())
	assert.Equal(t, "kind(0)", k.String())

	_, err := k.MarshalText()
	assert.Error(t, err)
}

func TestKind_JSONRoundTrip(t *testing.T) {
	n := Neuron{ID: 3, Name: "Adder_Sum", Kind: KindInstantDecay, Threshold: 1}

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"instant_decay"`)

	var back Neuron
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, n, back)
}
