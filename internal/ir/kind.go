package ir

import (
	"fmt"
	"strings"
)

// Kind selects the dynamics rule of a neuron.
//
// Kind is a closed set. The zero value is deliberately invalid so that a
// neuron whose kind was never set is rejected at compile time instead of
// silently picking a default.
type Kind uint8

const (
	// KindLeakyIntegrate decays its potential by Decay each step, then adds
	// the step's input. Fires when the potential reaches Threshold.
	KindLeakyIntegrate Kind = iota + 1

	// KindInstantDecay zeroes its potential at the start of every step, so
	// only inputs arriving in the same step can make it fire.
	KindInstantDecay

	// KindPassiveRelay fires exactly at its scheduled steps and ignores input.
	KindPassiveRelay
)

var kindNames = map[Kind]string{
	KindLeakyIntegrate: "leaky_integrate",
	KindInstantDecay:   "instant_decay",
	KindPassiveRelay:   "passive_relay",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind parses a kind name. Matching is case-insensitive and accepts
// hyphens in place of underscores.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown neuron kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid neuron kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
