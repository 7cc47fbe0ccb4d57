// Package supervisor composes the capsule registry, event log, and flag
// store into one aggregate status view and a blocker list.
package supervisor

import (
	"fmt"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/eventlog"
	"github.com/edhor1608/Nexum/internal/flags"
	"github.com/edhor1608/Nexum/internal/metrics"
	"github.com/edhor1608/Nexum/internal/registry"
)

// DefaultBlockerThreshold is the critical-event count at or above which a
// capsule is considered blocked, absent an explicit override.
const DefaultBlockerThreshold = 1

// CapsuleStatus is one capsule's row in a Report.
type CapsuleStatus struct {
	CapsuleID      string        `json:"capsule_id"`
	Slug           string        `json:"slug"`
	State          capsule.State `json:"state"`
	LastEventMS    int64         `json:"last_event_unix_ms"`
	CriticalEvents int           `json:"critical_events"`
}

// Report is the supervisor's composed status view.
type Report struct {
	Capsules         []CapsuleStatus `json:"capsules"`
	TotalCapsules    int             `json:"total_capsules"`
	DegradedCapsules int             `json:"degraded_capsules"`
	ArchivedCapsules int             `json:"archived_capsules"`
	CriticalEvents   int             `json:"critical_events"`
	Flags            flags.Flags     `json:"flags"`
}

// Blocker is one capsule flagged as needing operator attention.
type Blocker struct {
	CapsuleID string `json:"capsule_id"`
	Reason    string `json:"reason"`
}

// Status composes registry, event log, and flag store reads into one
// Report. flagsPath may be empty, in which case Flags is the compiled-in
// default.
func Status(reg *registry.Registry, events *eventlog.Store, flagsPath string) (Report, error) {
	capsules, err := reg.List()
	if err != nil {
		return Report{}, fmt.Errorf("supervisor: list capsules: %w", err)
	}

	summary, err := events.Summary()
	if err != nil {
		return Report{}, fmt.Errorf("supervisor: event summary: %w", err)
	}
	byCapsule := make(map[string]eventlog.CapsuleSummary, len(summary.Capsules))
	for _, cs := range summary.Capsules {
		byCapsule[cs.CapsuleID] = cs
	}

	f, err := flags.LoadOrDefault(flagsPath)
	if err != nil {
		return Report{}, fmt.Errorf("supervisor: load flags: %w", err)
	}

	report := Report{TotalCapsules: len(capsules), CriticalEvents: summary.CriticalEvents, Flags: f}
	stateCounts := make(map[capsule.State]int)
	for _, c := range capsules {
		cs := byCapsule[c.CapsuleID]
		report.Capsules = append(report.Capsules, CapsuleStatus{
			CapsuleID:      c.CapsuleID,
			Slug:           c.Slug,
			State:          c.State,
			LastEventMS:    cs.LastTSUnixMS,
			CriticalEvents: cs.CriticalEvents,
		})
		stateCounts[c.State]++
		switch c.State {
		case capsule.StateDegraded:
			report.DegradedCapsules++
		case capsule.StateArchived:
			report.ArchivedCapsules++
		}
	}
	for _, state := range []capsule.State{capsule.StateCreating, capsule.StateRestoring, capsule.StateReady, capsule.StateDegraded, capsule.StateArchived} {
		metrics.CapsulesTotal.WithLabelValues(capsule.StateToString(state)).Set(float64(stateCounts[state]))
	}
	return report, nil
}

// Blockers returns every capsule in Report that is degraded or whose
// critical-event count meets or exceeds threshold. A threshold of 0 uses
// DefaultBlockerThreshold.
func Blockers(report Report, threshold int) []Blocker {
	if threshold <= 0 {
		threshold = DefaultBlockerThreshold
	}
	var out []Blocker
	for _, c := range report.Capsules {
		switch {
		case c.State == capsule.StateDegraded:
			out = append(out, Blocker{CapsuleID: c.CapsuleID, Reason: "capsule is degraded"})
		case c.CriticalEvents >= threshold:
			out = append(out, Blocker{CapsuleID: c.CapsuleID, Reason: fmt.Sprintf("critical events %d >= threshold %d", c.CriticalEvents, threshold)})
		}
	}
	return out
}
