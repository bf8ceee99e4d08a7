package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeforge/internal/ir"
)

func buildPair(t *testing.T) *Scaffold {
	t.Helper()
	s := New()
	in, err := s.AddBrick(relayBrick{name: "Input", n: 2}, nil, false)
	require.NoError(t, err)
	_, err = s.AddBrick(gateBrick{name: "Gate", n: 2}, from(in, 0), true)
	require.NoError(t, err)
	return s
}

func TestFinalize_AssignsContiguousIDs(t *testing.T) {
	g, err := buildPair(t).Finalize()
	require.NoError(t, err)

	require.Len(t, g.Neurons, 3)
	for i, n := range g.Neurons {
		assert.Equal(t, i, n.ID)
	}
	assert.Equal(t, "Input_0", g.Neurons[0].Name)
	assert.Equal(t, "Input_1", g.Neurons[1].Name)
	assert.Equal(t, "Gate_main", g.Neurons[2].Name)

	assert.Equal(t, []ir.Synapse{
		{From: 0, To: 2, Weight: 1, Delay: 0},
		{From: 1, To: 2, Weight: 1, Delay: 0},
	}, g.Synapses)

	require.Len(t, g.Fragments, 2)
	assert.Equal(t, [][]int{{2, 2}}, g.Fragments[1].Inputs)
	assert.Equal(t, [][]int{{2}}, g.Fragments[1].Outputs)
}

func TestFinalize_IdentifierStability(t *testing.T) {
	a, err := buildPair(t).Finalize()
	require.NoError(t, err)
	b, err := buildPair(t).Finalize()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, ir.MustFingerprint(a), ir.MustFingerprint(b))
}

func TestFinalize_MarksProbeOutputs(t *testing.T) {
	g, err := buildPair(t).Finalize()
	require.NoError(t, err)

	assert.Equal(t, []int{2}, g.Probes())
	assert.False(t, g.Neurons[0].Probe)
}

func TestFinalize_Idempotent(t *testing.T) {
	s := buildPair(t)
	a, err := s.Finalize()
	require.NoError(t, err)
	b, err := s.Finalize()
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestFinalize_FreezesScaffold(t *testing.T) {
	s := buildPair(t)
	_, err := s.Finalize()
	require.NoError(t, err)

	_, err = s.AddBrick(relayBrick{name: "Late", n: 1}, nil, false)
	require.Error(t, err)
	assert.Equal(t, ErrCodeFinalized, WiringCode(err))

	err = s.Connect(1, 0, from(0, 0)[0])
	assert.Equal(t, ErrCodeFinalized, WiringCode(err))
}

func TestFinalize_IncompleteGraph(t *testing.T) {
	s := New()
	_, err := s.AddBrick(relayBrick{name: "Input", n: 2}, nil, false)
	require.NoError(t, err)
	_, err = s.AddBrick(gateBrick{name: "Gate", n: 2}, nil, true)
	require.NoError(t, err)

	_, err = s.Finalize()
	require.Error(t, err)
	assert.True(t, IsIncompleteGraphError(err))

	var ie *IncompleteGraphError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []PortAddress{{Fragment: 1, Name: "Gate", Position: 0}}, ie.Missing)

	// Finalize left the scaffold open; completing it succeeds.
	assert.False(t, s.Finalized())
	require.NoError(t, s.Connect(1, 0, from(0, 0)[0]))

	g, err := s.Finalize()
	require.NoError(t, err)
	assert.Len(t, g.Synapses, 2)
}

func TestFinalize_EmptyConnectionIsUnconnected(t *testing.T) {
	s := New()
	_, err := s.AddBrick(relayBrick{name: "Input", n: 1}, nil, false)
	require.NoError(t, err)
	_, err = s.AddBrick(gateBrick{name: "Gate", n: 1}, []Connection{{}}, false)
	require.NoError(t, err)

	_, err = s.Finalize()
	assert.True(t, IsIncompleteGraphError(err))
}

func TestAddBrick_ArityMismatch(t *testing.T) {
	s := New()
	_, err := s.AddBrick(relayBrick{name: "Input", n: 3}, nil, false)
	require.NoError(t, err)

	_, err = s.AddBrick(gateBrick{name: "Gate", n: 2}, from(0, 0), true)
	require.Error(t, err)
	assert.True(t, IsWiringError(err))
	assert.Equal(t, ErrCodeArityMismatch, WiringCode(err))
	assert.Equal(t, 1, s.Len(), "failed brick must not be appended")
}

func TestAddBrick_ConcatenatesSources(t *testing.T) {
	s := New()
	_, err := s.AddBrick(relayBrick{name: "A", n: 1}, nil, false)
	require.NoError(t, err)
	_, err = s.AddBrick(relayBrick{name: "B", n: 1}, nil, false)
	require.NoError(t, err)

	_, err = s.AddBrick(gateBrick{name: "Gate", n: 2}, []Connection{{
		Sources: []PortRef{{Fragment: 0, Port: 0}, {Fragment: 1, Port: 0}},
		Delay:   3,
	}}, true)
	require.NoError(t, err)

	g, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []ir.Synapse{
		{From: 0, To: 2, Weight: 1, Delay: 3},
		{From: 1, To: 2, Weight: 1, Delay: 3},
	}, g.Synapses)
}

func TestAddBrick_UnknownReferences(t *testing.T) {
	tests := []struct {
		name string
		conn []Connection
		code WiringErrorCode
	}{
		{"unknown fragment", from(5, 0), ErrCodeUnknownFragment},
		{"negative fragment", from(-1, 0), ErrCodeUnknownFragment},
		{"unknown output port", from(0, 2), ErrCodeUnknownPort},
		{"negative delay", []Connection{{Sources: []PortRef{{}}, Delay: -1}}, ErrCodeInvalidDelay},
		{"too many connections", append(from(0, 0), from(0, 0)...), ErrCodeUnknownPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.AddBrick(relayBrick{name: "Input", n: 1}, nil, false)
			require.NoError(t, err)

			_, err = s.AddBrick(gateBrick{name: "Gate", n: 1}, tt.conn, false)
			require.Error(t, err)
			assert.Equal(t, tt.code, WiringCode(err))
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestConnect_Errors(t *testing.T) {
	s := New()
	_, err := s.AddBrick(relayBrick{name: "Input", n: 1}, nil, false)
	require.NoError(t, err)
	_, err = s.AddBrick(gateBrick{name: "Gate", n: 1}, nil, false)
	require.NoError(t, err)
	_, err = s.AddBrick(gateBrick{name: "Later", n: 1}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, ErrCodeUnknownFragment, WiringCode(s.Connect(9, 0, from(0, 0)[0])))
	assert.Equal(t, ErrCodeUnknownPort, WiringCode(s.Connect(1, 4, from(0, 0)[0])))
	assert.Equal(t, ErrCodeForwardReference, WiringCode(s.Connect(1, 0, from(2, 0)[0])))

	require.NoError(t, s.Connect(1, 0, from(0, 0)[0]))
	assert.Equal(t, ErrCodeAlreadyConnected, WiringCode(s.Connect(1, 0, from(0, 0)[0])))
}

func TestAddBrick_ConfigurationErrorAppendsNothing(t *testing.T) {
	s := New()

	_, err := s.AddBrick(relayBrick{name: "Bad", n: 0}, nil, false)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, 0, s.Len())

	_, err = s.AddBrick(brokenBrick{}, nil, false)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "delay")
	assert.Equal(t, 0, s.Len())
}

func TestAddBrick_RejectsForeignHandles(t *testing.T) {
	s := New()
	_, err := s.AddBrick(relayBrick{name: "Input", n: 1}, nil, false)
	require.NoError(t, err)

	// A zero handle is never valid.
	_, err = s.AddBrick(foreignBrick{}, nil, false)
	assert.True(t, IsConfigurationError(err))

	// A handle from another fragment is rejected.
	_, err = s.AddBrick(foreignBrick{h: Handle{frag: 0, ref: 1}}, nil, false)
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, 1, s.Len())
}

func TestLookup(t *testing.T) {
	s := buildPair(t)

	idx, ok := s.Lookup("Gate")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = s.Lookup("Missing")
	assert.False(t, ok)
}

func TestDescribe_DoesNotMutate(t *testing.T) {
	s := buildPair(t)

	open := s.Describe(2)
	assert.Contains(t, open, "Scaffold (open): 2 fragment(s)")
	assert.Contains(t, open, "Gate neurons=1 inputs=1/1")
	assert.False(t, s.Finalized())

	_, err := s.Finalize()
	require.NoError(t, err)

	final := s.Describe(2)
	assert.Contains(t, final, "3 neuron(s), 2 synapse(s)")
	assert.Contains(t, final, "#2 Gate_main kind=instant_decay threshold=2 probe")
	assert.Contains(t, final, "0 -> 2 weight=1 delay=0")
	assert.Equal(t, final, s.Describe(2))
}

func TestAddNeuron_NormalizesSchedule(t *testing.T) {
	fb := newFragmentBuilder(0, "X")
	fb.AddNeuron(NeuronSpec{Role: "r", Kind: ir.KindPassiveRelay, Schedule: []int{5, 1, 5, 3}})
	require.NoError(t, fb.Err())
	assert.Equal(t, []int{1, 3, 5}, fb.neurons[0].Schedule)

	fb.AddNeuron(NeuronSpec{Role: "bad", Kind: ir.KindPassiveRelay, Schedule: []int{-2}})
	assert.True(t, IsConfigurationError(fb.Err()))
}
