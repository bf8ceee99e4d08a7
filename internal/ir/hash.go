package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainGraph = "spikeforge/graph/v1"
	DomainTrace = "spikeforge/trace/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// formatFloat renders a float with the shortest exact representation, so the
// same value always hashes the same way.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// CanonicalGraph returns the canonical JSON form of a finalized graph.
func CanonicalGraph(g *Graph) ([]byte, error) {
	neurons := make([]any, len(g.Neurons))
	for i, n := range g.Neurons {
		schedule := n.Schedule
		if schedule == nil {
			schedule = []int{}
		}
		neurons[i] = map[string]any{
			"id":        n.ID,
			"name":      n.Name,
			"kind":      n.Kind.String(),
			"threshold": formatFloat(n.Threshold),
			"decay":     formatFloat(n.Decay),
			"reset":     formatFloat(n.Reset),
			"initial":   formatFloat(n.Initial),
			"schedule":  schedule,
			"probe":     n.Probe,
			"fragment":  n.Fragment,
		}
	}

	synapses := make([]any, len(g.Synapses))
	for i, s := range g.Synapses {
		synapses[i] = map[string]any{
			"from":   s.From,
			"to":     s.To,
			"weight": formatFloat(s.Weight),
			"delay":  s.Delay,
		}
	}

	fragments := make([]any, len(g.Fragments))
	for i, f := range g.Fragments {
		fragments[i] = map[string]any{
			"index":   f.Index,
			"name":    f.Name,
			"first":   f.First,
			"count":   f.Count,
			"inputs":  portsToAny(f.Inputs),
			"outputs": portsToAny(f.Outputs),
			"probe":   f.Probe,
		}
	}

	return MarshalCanonical(map[string]any{
		"version":   GraphVersion,
		"neurons":   neurons,
		"synapses":  synapses,
		"fragments": fragments,
	})
}

func portsToAny(ports [][]int) []any {
	out := make([]any, len(ports))
	for i, ids := range ports {
		if ids == nil {
			ids = []int{}
		}
		out[i] = ids
	}
	return out
}

// Fingerprint computes the content-addressed identity of a finalized graph.
// Identical sequences of scaffold calls produce identical fingerprints.
func Fingerprint(g *Graph) (string, error) {
	canonical, err := CanonicalGraph(g)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// TraceHash computes the identity of a spike sequence. Two runs are
// reproducible exactly when their trace hashes are equal.
func TraceHash(events []SpikeEvent) (string, error) {
	arr := make([]any, len(events))
	for i, e := range events {
		arr[i] = []any{e.Neuron, e.Step}
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the graph is known to be valid.
func MustFingerprint(g *Graph) string {
	fp, err := Fingerprint(g)
	if err != nil {
		panic(err)
	}
	return fp
}
