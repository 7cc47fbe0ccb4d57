// Package dispatcher turns one or many dispatch events into restore
// orchestrator runs, aggregating their outcomes into a batch result and
// an attention plan.
package dispatcher

import (
	"fmt"

	"github.com/edhor1608/Nexum/internal/attention"
	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/controlplane"
	"github.com/edhor1608/Nexum/internal/eventlog"
	"github.com/edhor1608/Nexum/internal/isolation"
	"github.com/edhor1608/Nexum/internal/metrics"
	"github.com/edhor1608/Nexum/internal/registry"
	"github.com/edhor1608/Nexum/internal/restoreplan"
	"github.com/edhor1608/Nexum/internal/runflow"
)

// Event is one dispatch request. TerminalCmd, EditorTarget, and
// BrowserURL are optional overrides of the capsule-derived defaults.
type Event struct {
	CapsuleID              string             `json:"capsule_id"`
	Signal                 restoreplan.Signal `json:"signal"`
	Upstream               string             `json:"upstream"`
	IdentityCollision      bool               `json:"identity_collision,omitempty"`
	HighRiskSecretWorkflow bool               `json:"high_risk_secret_workflow,omitempty"`
	ForceIsolatedMode      bool               `json:"force_isolated_mode,omitempty"`
	TerminalCmd            string             `json:"terminal_cmd,omitempty"`
	EditorTarget           string             `json:"editor_target,omitempty"`
	BrowserURL             string             `json:"browser_url,omitempty"`
}

// Options configures a dispatch run.
type Options struct {
	CapsuleDB             *registry.Registry
	EventsDB              *eventlog.Store
	TLSDir                string
	RoutingSocket         string
	FailOnMissingCapsules bool
	DryRun                bool
}

// Result is one event's outcome. ExecutionPlan is populated only on dry
// runs, where the combined restore/desktop/attention plan stands in for
// the side effects that were skipped.
type Result struct {
	CapsuleID     string                      `json:"capsule_id"`
	OK            bool                        `json:"ok"`
	Error         string                      `json:"error,omitempty"`
	ExecutionPlan *controlplane.ExecutionPlan `json:"execution_plan,omitempty"`
}

// AttentionPlan aggregates the attention routing of every successfully
// processed event in the batch.
type AttentionPlan struct {
	Blocking         int    `json:"blocking"`
	Active           int    `json:"active"`
	Passive          int    `json:"passive"`
	RequiresAckCount int    `json:"requires_ack_count"`
	FocusCapsuleID   string `json:"focus_capsule_id,omitempty"`
}

// BatchResult is the outcome of dispatching one or many events.
type BatchResult struct {
	Processed     int           `json:"processed"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	Results       []Result      `json:"results"`
	AttentionPlan AttentionPlan `json:"attention_plan"`
}

func priorityRank(priority attention.Priority) int {
	switch priority {
	case attention.PriorityBlocking:
		return 3
	case attention.PriorityActive:
		return 2
	case attention.PriorityPassive:
		return 1
	default:
		return 0
	}
}

// DispatchBatch processes events in order. With FailOnMissingCapsules,
// it first verifies every capsule exists and aborts before any side
// effects if one does not. With DryRun, no TLS/event/routing/registry
// writes occur; only validation and attention planning run.
func DispatchBatch(events []Event, opts Options) (BatchResult, error) {
	if opts.FailOnMissingCapsules {
		for _, event := range events {
			if opts.CapsuleDB == nil {
				break
			}
			if _, ok, err := opts.CapsuleDB.Get(event.CapsuleID); err != nil {
				return BatchResult{}, fmt.Errorf("dispatcher: lookup capsule %s: %w", event.CapsuleID, err)
			} else if !ok {
				return BatchResult{}, fmt.Errorf("unknown capsule: %s", event.CapsuleID)
			}
		}
	}

	var (
		results      []Result
		bestRank     = -1
		focusCapsule string
		plan         AttentionPlan
	)

	for _, event := range events {
		result, routed := dispatchOne(event, opts)
		results = append(results, result)
		metrics.DispatcherEventsTotal.WithLabelValues(outcomeLabel(result.OK)).Inc()

		if !result.OK || routed == nil {
			continue
		}

		switch routed.Priority {
		case attention.PriorityBlocking:
			plan.Blocking++
		case attention.PriorityActive:
			plan.Active++
		case attention.PriorityPassive:
			plan.Passive++
		}
		if routed.RequiresAck {
			plan.RequiresAckCount++
		}

		if rank := priorityRank(routed.Priority); rank > bestRank {
			bestRank = rank
			focusCapsule = event.CapsuleID
		}
	}

	plan.FocusCapsuleID = focusCapsule

	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
		}
	}

	return BatchResult{
		Processed:     len(results),
		Succeeded:     succeeded,
		Failed:        len(results) - succeeded,
		Results:       results,
		AttentionPlan: plan,
	}, nil
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func dispatchOne(event Event, opts Options) (Result, *attention.Routed) {
	if opts.CapsuleDB == nil {
		return Result{CapsuleID: event.CapsuleID, OK: false, Error: "no capsule registry configured"}, nil
	}

	c, ok, err := opts.CapsuleDB.Get(event.CapsuleID)
	if err != nil {
		return Result{CapsuleID: event.CapsuleID, OK: false, Error: err.Error()}, nil
	}
	if !ok {
		return Result{CapsuleID: event.CapsuleID, OK: false, Error: fmt.Sprintf("unknown capsule: %s", event.CapsuleID)}, nil
	}

	terminalCmd := event.TerminalCmd
	editorTarget := event.EditorTarget
	if terminalCmd == "" && c.RepoPath != "" {
		terminalCmd = fmt.Sprintf("cd %s && nix develop", c.RepoPath)
	}
	if editorTarget == "" {
		editorTarget = c.RepoPath
	}
	if terminalCmd == "" || editorTarget == "" {
		return Result{CapsuleID: event.CapsuleID, OK: false, Error: "missing restore surfaces"}, nil
	}

	browserURL := event.BrowserURL
	if browserURL == "" {
		browserURL = fmt.Sprintf("https://%s", c.Domain())
	}

	routed := attention.Route(attention.Event{CapsuleID: event.CapsuleID, Signal: event.Signal})

	if opts.DryRun {
		mode := isolation.SelectMode(isolation.Input{
			IdentityCollisionDetected: event.IdentityCollision,
			HighRiskSecretWorkflow:    event.HighRiskSecretWorkflow,
			ForceIsolatedMode:         event.ForceIsolatedMode,
		})
		plan := controlplane.Build(restoreplan.Request{
			Capsule: capsule.New(event.CapsuleID, c.DisplayName, mode, c.Workspace),
			Signal:  event.Signal,
			Surfaces: restoreplan.Surfaces{
				TerminalCmd:  terminalCmd,
				EditorTarget: editorTarget,
				BrowserURL:   browserURL,
			},
		})
		return Result{CapsuleID: event.CapsuleID, OK: true, ExecutionPlan: &plan}, &routed
	}

	_, runErr := runflow.Run(runflow.Input{
		CapsuleID:              event.CapsuleID,
		DisplayName:            c.DisplayName,
		Workspace:              c.Workspace,
		Signal:                 event.Signal,
		TerminalCmd:            terminalCmd,
		EditorTarget:           editorTarget,
		BrowserURL:             browserURL,
		RouteUpstream:          event.Upstream,
		RoutingSocket:          opts.RoutingSocket,
		IdentityCollision:      event.IdentityCollision,
		HighRiskSecretWorkflow: event.HighRiskSecretWorkflow,
		ForceIsolatedMode:      event.ForceIsolatedMode,
		CapsuleDB:              opts.CapsuleDB,
		TLSDir:                 opts.TLSDir,
		EventsDB:               opts.EventsDB,
	})
	if runErr != nil {
		return Result{CapsuleID: event.CapsuleID, OK: false, Error: runErr.Error()}, &routed
	}

	return Result{CapsuleID: event.CapsuleID, OK: true}, &routed
}
