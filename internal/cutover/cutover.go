// Package cutover gates promotion of a shadowed capability to the
// control plane. Rollback is a symmetric, unconditional flag reset that
// complements Apply.
package cutover

import (
	"fmt"
	"math"
	"strconv"

	"github.com/edhor1608/Nexum/internal/flags"
	"github.com/edhor1608/Nexum/internal/metrics"
)

// Capability is a control-plane surface that can be cut over from
// shadow mode.
type Capability string

const (
	CapabilityRouting   Capability = "routing"
	CapabilityRestore   Capability = "restore"
	CapabilityAttention Capability = "attention"
)

// ParseCapability maps a lowercase capability name to a Capability, or
// reports ok=false if it is not recognized.
func ParseCapability(input string) (Capability, bool) {
	switch Capability(input) {
	case CapabilityRouting, CapabilityRestore, CapabilityAttention:
		return Capability(input), true
	default:
		return "", false
	}
}

func (c Capability) flagName() flags.Name {
	switch c {
	case CapabilityRouting:
		return flags.RoutingControlPlane
	case CapabilityRestore:
		return flags.RestoreControlPlane
	case CapabilityAttention:
		return flags.AttentionControlPlane
	default:
		return ""
	}
}

// Input is everything the gate needs to decide whether a capability
// may be cut over.
type Input struct {
	Capability        Capability
	ParityScore       float64
	MinParityScore    float64
	CriticalEvents    uint32
	MaxCriticalEvents uint32
	ShadowModeEnabled bool
}

// Decision is the gate's verdict, with one reason string per failed check.
type Decision struct {
	Capability   Capability `json:"capability"`
	Allowed      bool       `json:"allowed"`
	Reasons      []string   `json:"reasons"`
	FlagToEnable string     `json:"flag_to_enable,omitempty"`
}

// Evaluate admits cutover only if every gate passes: shadow mode is
// enabled, both parity values are finite and within [0,1] with
// parity_score at or above the threshold, and critical events are
// within budget. Gates are independent; every failure is reported.
func Evaluate(input Input) Decision {
	var reasons []string

	if !input.ShadowModeEnabled {
		reasons = append(reasons, "shadow_mode must be enabled")
	}

	if !isFinite(input.ParityScore) || !isFinite(input.MinParityScore) {
		reasons = append(reasons, "parity values must be finite")
	} else if !inUnitRange(input.ParityScore) || !inUnitRange(input.MinParityScore) {
		reasons = append(reasons, "parity values must be between 0 and 1")
	} else if input.ParityScore < input.MinParityScore {
		reasons = append(reasons, fmt.Sprintf("parity below threshold: %v < %v", input.ParityScore, input.MinParityScore))
	}

	if input.CriticalEvents > input.MaxCriticalEvents {
		reasons = append(reasons, fmt.Sprintf("critical events exceeded: %d > %d", input.CriticalEvents, input.MaxCriticalEvents))
	}

	allowed := len(reasons) == 0
	decision := Decision{Capability: input.Capability, Allowed: allowed, Reasons: reasons}
	if allowed {
		decision.FlagToEnable = string(input.Capability.flagName())
	}
	metrics.CutoverDecisionsTotal.WithLabelValues(string(input.Capability), strconv.FormatBool(allowed)).Inc()
	return decision
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func inUnitRange(v float64) bool {
	return v >= 0.0 && v <= 1.0
}

// Apply sets decision's target flag to true, but only when the decision
// was allowed.
func Apply(f *flags.Flags, decision Decision) {
	if !decision.Allowed {
		return
	}
	flags.Set(f, decision.Capability.flagName(), true)
}

// Rollback unconditionally disables capability's control-plane flag.
func Rollback(f *flags.Flags, capability Capability) {
	flags.Set(f, capability.flagName(), false)
}
