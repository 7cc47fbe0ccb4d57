// Package shadow compares a shadow-mode candidate execution against the
// primary execution it is meant to mirror.
package shadow

import "fmt"

// ExecutionResult is the observable summary of one orchestrator run,
// whether produced by the primary code path or a shadowed candidate.
type ExecutionResult struct {
	CapsuleID         string `json:"capsule_id"`
	StepCount         uint32 `json:"step_count"`
	DurationMS        uint64 `json:"duration_ms"`
	AttentionPriority string `json:"attention_priority"`
}

// ParityReport is the outcome of comparing two ExecutionResults.
type ParityReport struct {
	CapsuleID   string   `json:"capsule_id"`
	Matches     bool     `json:"matches"`
	ParityScore float64  `json:"parity_score"`
	Mismatches  []string `json:"mismatches"`
}

// durationToleranceMS is how much primary and candidate durations may
// drift and still count as a match.
const durationToleranceMS = 500

// CompareExecution runs four equal-weight checks (capsule id, step
// count, duration within tolerance, attention priority) and reports a
// parity score of passed/4 rounded to three decimal places.
func CompareExecution(primary, candidate ExecutionResult) ParityReport {
	var mismatches []string
	var passed float64
	const totalChecks = 4.0

	if primary.CapsuleID == candidate.CapsuleID {
		passed++
	} else {
		mismatches = append(mismatches, fmt.Sprintf(
			"capsule_id mismatch: primary=%s, candidate=%s", primary.CapsuleID, candidate.CapsuleID))
	}

	if primary.StepCount == candidate.StepCount {
		passed++
	} else {
		mismatches = append(mismatches, fmt.Sprintf(
			"step_count mismatch: primary=%d, candidate=%d", primary.StepCount, candidate.StepCount))
	}

	durationDelta := absDiffUint64(primary.DurationMS, candidate.DurationMS)
	if durationDelta <= durationToleranceMS {
		passed++
	} else {
		mismatches = append(mismatches, fmt.Sprintf(
			"duration_ms mismatch: primary=%d, candidate=%d, delta=%d",
			primary.DurationMS, candidate.DurationMS, durationDelta))
	}

	if primary.AttentionPriority == candidate.AttentionPriority {
		passed++
	} else {
		mismatches = append(mismatches, fmt.Sprintf(
			"attention_priority mismatch: primary=%s, candidate=%s",
			primary.AttentionPriority, candidate.AttentionPriority))
	}

	parityScore := roundToThreeDecimals(passed / totalChecks)

	return ParityReport{
		CapsuleID:   primary.CapsuleID,
		Matches:     len(mismatches) == 0,
		ParityScore: parityScore,
		Mismatches:  mismatches,
	}
}

func absDiffUint64(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func roundToThreeDecimals(v float64) float64 {
	scaled := v * 1000
	rounded := float64(int64(scaled + 0.5))
	return rounded / 1000
}
