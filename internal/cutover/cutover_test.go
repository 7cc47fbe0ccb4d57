package cutover

import (
	"math"
	"testing"

	"github.com/edhor1608/Nexum/internal/flags"
	"github.com/stretchr/testify/require"
)

func admissibleInput() Input {
	return Input{
		Capability:        CapabilityRouting,
		ParityScore:       0.99,
		MinParityScore:    0.95,
		CriticalEvents:    0,
		MaxCriticalEvents: 2,
		ShadowModeEnabled: true,
	}
}

func TestEvaluateAdmitsWhenAllGatesPass(t *testing.T) {
	decision := Evaluate(admissibleInput())
	require.True(t, decision.Allowed)
	require.Empty(t, decision.Reasons)
	require.Equal(t, "routing_control_plane", decision.FlagToEnable)
}

func TestEvaluateRejectsWithoutShadowMode(t *testing.T) {
	input := admissibleInput()
	input.ShadowModeEnabled = false
	decision := Evaluate(input)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reasons, "shadow_mode must be enabled")
}

func TestEvaluateRejectsBelowParityThreshold(t *testing.T) {
	input := admissibleInput()
	input.ParityScore = 0.5
	decision := Evaluate(input)
	require.False(t, decision.Allowed)
	require.Len(t, decision.Reasons, 1)
}

func TestEvaluateRejectsOutOfRangeParity(t *testing.T) {
	input := admissibleInput()
	input.ParityScore = 1.5
	decision := Evaluate(input)
	require.False(t, decision.Allowed)
}

func TestEvaluateRejectsNonFiniteParity(t *testing.T) {
	input := admissibleInput()
	input.ParityScore = math.NaN()
	decision := Evaluate(input)
	require.False(t, decision.Allowed)
}

func TestEvaluateRejectsTooManyCriticalEvents(t *testing.T) {
	input := admissibleInput()
	input.CriticalEvents = 3
	decision := Evaluate(input)
	require.False(t, decision.Allowed)
}

func TestEvaluateAccumulatesMultipleReasons(t *testing.T) {
	input := admissibleInput()
	input.ShadowModeEnabled = false
	input.CriticalEvents = 10
	decision := Evaluate(input)
	require.Len(t, decision.Reasons, 2)
}

func TestApplyOnlySetsFlagWhenAllowed(t *testing.T) {
	f := flags.Default()
	Apply(&f, Evaluate(admissibleInput()))
	require.True(t, f.RoutingControlPlane)

	rejected := admissibleInput()
	rejected.ShadowModeEnabled = false
	f2 := flags.Default()
	Apply(&f2, Evaluate(rejected))
	require.False(t, f2.RoutingControlPlane)
}

func TestRollbackUnconditionallyDisables(t *testing.T) {
	f := flags.Default()
	f.RoutingControlPlane = true
	Rollback(&f, CapabilityRouting)
	require.False(t, f.RoutingControlPlane)
}

func TestParseCapability(t *testing.T) {
	c, ok := ParseCapability("restore")
	require.True(t, ok)
	require.Equal(t, CapabilityRestore, c)

	_, ok = ParseCapability("bogus")
	require.False(t, ok)
}
