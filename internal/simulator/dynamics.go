package simulator

import "github.com/roach88/spikeforge/internal/ir"

// supported reports whether the simulator can execute kind k.
// Every kind handled by advance must be listed here.
func supported(k ir.Kind) bool {
	switch k {
	case ir.KindLeakyIntegrate, ir.KindInstantDecay, ir.KindPassiveRelay:
		return true
	}
	return false
}

// advance computes one step of a neuron's dynamics from its pre-step
// potential v and summed input. scheduled is true when a passive relay is
// due to fire this step.
//
// A neuron fires when its potential reaches the threshold; the potential
// is then set to the reset value.
func advance(n *ir.Neuron, v, input float64, scheduled bool) (float64, bool) {
	switch n.Kind {
	case ir.KindLeakyIntegrate:
		v = v*(1-n.Decay) + input
	case ir.KindInstantDecay:
		v = input
	case ir.KindPassiveRelay:
		return v, scheduled
	default:
		return v, false
	}

	if v >= n.Threshold {
		return n.Reset, true
	}
	return v, false
}
