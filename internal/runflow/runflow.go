// Package runflow is the restore orchestrator: the coordinating core
// that ties together the capsule registry, isolation policy, restore
// planner, desktop renderer, identity policy, TLS material, routing,
// runtime metadata, and the event log into one restore run.
package runflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/desktop"
	"github.com/edhor1608/Nexum/internal/eventlog"
	"github.com/edhor1608/Nexum/internal/identity"
	"github.com/edhor1608/Nexum/internal/isolation"
	"github.com/edhor1608/Nexum/internal/metrics"
	"github.com/edhor1608/Nexum/internal/registry"
	"github.com/edhor1608/Nexum/internal/restoreplan"
	"github.com/edhor1608/Nexum/internal/routing"
	"github.com/edhor1608/Nexum/internal/runtimemeta"
	"github.com/edhor1608/Nexum/internal/tlsmaterial"
)

// TLSValidityDays is the validity window ensured for every restore run's
// domain certificate.
const TLSValidityDays = 30

// Input is everything one restore run needs.
type Input struct {
	CapsuleID              string
	DisplayName            string
	Workspace              uint16
	Signal                 restoreplan.Signal
	TerminalCmd            string
	EditorTarget           string
	BrowserURL             string
	RouteUpstream          string
	RoutingSocket          string
	IdentityCollision      bool
	HighRiskSecretWorkflow bool
	ForceIsolatedMode      bool
	CapsuleDB              *registry.Registry
	TLSDir                 string
	EventsDB               *eventlog.Store
}

// Summary is the orchestrator's result.
type Summary struct {
	CapsuleID            string `json:"capsule_id"`
	Domain               string `json:"domain"`
	RunMode              string `json:"run_mode"`
	Degraded             bool   `json:"degraded"`
	DegradedReason       string `json:"degraded_reason,omitempty"`
	TargetBudgetMS       int64  `json:"target_budget_ms"`
	ShellScript          string `json:"shell_script"`
	TLSFingerprintSHA256 string `json:"tls_fingerprint_sha256"`
	EventsWritten        int    `json:"events_written"`
}

// RoutingError reports a hard routing failure: a genuine domain
// conflict reported by the routing daemon or in-process core.
type RoutingError struct {
	Domain  string
	Message string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing: domain %s: %s", e.Domain, e.Message)
}

// Run executes the nine-step restore flow: transition to restoring,
// select isolation mode, build the restore plan, ensure TLS material,
// register the route, render the desktop script, append events,
// transition to the final state, and return a summary.
func Run(input Input) (Summary, error) {
	timer := metrics.NewTimer()
	summary, err := run(input)
	timer.ObserveDuration(metrics.RestoreDuration)
	if err != nil {
		metrics.RestoreTotal.WithLabelValues("error").Inc()
	} else if summary.Degraded {
		metrics.RestoreTotal.WithLabelValues("degraded").Inc()
	} else {
		metrics.RestoreTotal.WithLabelValues("ok").Inc()
	}
	return summary, err
}

func run(input Input) (Summary, error) {
	// 1. Transition the persisted capsule to restoring, if tracked.
	if input.CapsuleDB != nil {
		if err := input.CapsuleDB.TransitionState(input.CapsuleID, capsule.StateRestoring); err != nil {
			return Summary{}, fmt.Errorf("runflow: transition to restoring: %w", err)
		}
	}

	// 2. Select the capsule's execution mode via isolation policy.
	mode := isolation.SelectMode(isolation.Input{
		IdentityCollisionDetected: input.IdentityCollision,
		HighRiskSecretWorkflow:    input.HighRiskSecretWorkflow,
		ForceIsolatedMode:         input.ForceIsolatedMode,
	})

	// 3. Build the capsule value object, restore request, and plan.
	c := capsule.New(input.CapsuleID, input.DisplayName, mode, input.Workspace)
	request := restoreplan.Request{
		Capsule: c,
		Signal:  input.Signal,
		Surfaces: restoreplan.Surfaces{
			TerminalCmd:  input.TerminalCmd,
			EditorTarget: input.EditorTarget,
			BrowserURL:   input.BrowserURL,
		},
	}
	restorePlan := restoreplan.Build(request)

	// 4. Ensure TLS material for the capsule's domain.
	tlsRecord, err := tlsmaterial.Ensure(input.TLSDir, c.Domain(), TLSValidityDays)
	if err != nil {
		return Summary{}, fmt.Errorf("runflow: ensure tls material: %w", err)
	}

	// 5. Ensure the route, distinguishing hard from soft failures.
	degraded := false
	degradedReason := ""
	routeMessage := fmt.Sprintf("route registered: domain=%s", c.Domain())

	registerCmd := routing.Command{
		Cmd:       routing.CmdRegister,
		CapsuleID: c.CapsuleID,
		Domain:    c.Domain(),
		Upstream:  input.RouteUpstream,
	}

	if input.RoutingSocket != "" {
		outcome, sendErr := routing.SendCommand(input.RoutingSocket, registerCmd)
		switch {
		case sendErr != nil:
			degraded = true
			degradedReason = fmt.Sprintf("route_unavailable: %s", sendErr.Error())
			routeMessage = fmt.Sprintf("route degraded: domain=%s reason=%s", c.Domain(), degradedReason)
		case outcome.Kind == routing.KindError && outcome.Code == routing.CodeDomainConflict:
			if input.CapsuleDB != nil {
				_ = input.CapsuleDB.TransitionState(input.CapsuleID, capsule.StateDegraded)
			}
			return Summary{}, &RoutingError{Domain: c.Domain(), Message: outcome.Message}
		case outcome.Kind == routing.KindError:
			degraded = true
			degradedReason = fmt.Sprintf("route_unavailable: %s", outcome.Message)
			routeMessage = fmt.Sprintf("route degraded: domain=%s reason=%s", c.Domain(), degradedReason)
		}
	} else {
		core := routing.NewState()
		outcome := core.Handle(registerCmd)
		if outcome.Kind == routing.KindError {
			if input.CapsuleDB != nil {
				_ = input.CapsuleDB.TransitionState(input.CapsuleID, capsule.StateDegraded)
			}
			return Summary{}, &RoutingError{Domain: c.Domain(), Message: outcome.Message}
		}
	}

	// 6. Render the desktop plan, substituting the identity-aware
	// browser command and prepending runtime metadata exports.
	desktopPlan := desktop.BuildPlan(restorePlan)
	script := desktop.RenderScript(desktopPlan)
	browserCmd := identity.BrowserLaunchCommand(input.BrowserURL, input.CapsuleID, input.IdentityCollision)
	renderedBrowserCmd := fmt.Sprintf("xdg-open %s", desktop.Quote(input.BrowserURL))
	script = strings.Replace(script, renderedBrowserCmd, browserCmd, 1)

	env := runtimemeta.Env(c)
	script = prependEnvExports(script, env)

	// 7. Append exactly three events.
	eventsWritten := 0
	if input.EventsDB != nil {
		nowMS := time.Now().UnixMilli()
		if _, err := input.EventsDB.Append(eventlog.Event{
			CapsuleID: input.CapsuleID, Component: "runflow", Level: eventlog.LevelInfo,
			Message: "restore start", TSUnixMS: nowMS,
		}); err != nil {
			return Summary{}, fmt.Errorf("runflow: append start event: %w", err)
		}
		eventsWritten++

		routingLevel := eventlog.LevelInfo
		if degraded {
			routingLevel = eventlog.LevelWarn
		}
		if _, err := input.EventsDB.Append(eventlog.Event{
			CapsuleID: input.CapsuleID, Component: "routing", Level: routingLevel,
			Message: routeMessage, TSUnixMS: time.Now().UnixMilli(),
		}); err != nil {
			return Summary{}, fmt.Errorf("runflow: append routing event: %w", err)
		}
		eventsWritten++

		if _, err := input.EventsDB.Append(eventlog.Event{
			CapsuleID: input.CapsuleID, Component: "runflow", Level: eventlog.LevelInfo,
			Message: "restore plan ready", TSUnixMS: time.Now().UnixMilli(),
		}); err != nil {
			return Summary{}, fmt.Errorf("runflow: append ready event: %w", err)
		}
		eventsWritten++
	}

	// 8. Transition the persisted capsule to its final state.
	if input.CapsuleDB != nil {
		finalState := capsule.StateReady
		if degraded {
			finalState = capsule.StateDegraded
		}
		if err := input.CapsuleDB.TransitionState(input.CapsuleID, finalState); err != nil {
			return Summary{}, fmt.Errorf("runflow: transition to %s: %w", capsule.StateToString(finalState), err)
		}
	}

	return Summary{
		CapsuleID:            input.CapsuleID,
		Domain:               c.Domain(),
		RunMode:              capsule.ModeToString(mode),
		Degraded:             degraded,
		DegradedReason:       degradedReason,
		TargetBudgetMS:       restorePlan.TargetBudgetMS,
		ShellScript:          script,
		TLSFingerprintSHA256: tlsRecord.FingerprintSHA256,
		EventsWritten:        eventsWritten,
	}, nil
}

func prependEnvExports(script string, env map[string]string) string {
	keys := []string{"NEXUM_CAPSULE_ID", "NEXUM_CAPSULE_SLUG", "NEXUM_CAPSULE_DOMAIN", "NEXUM_CAPSULE_WORKSPACE", "NEXUM_PROCESS_LABEL"}
	var lines []string
	for _, key := range keys {
		if value, ok := env[key]; ok {
			lines = append(lines, fmt.Sprintf("export %s=%s", key, value))
		}
	}
	if script != "" {
		lines = append(lines, script)
	}
	return strings.Join(lines, "\n")
}
