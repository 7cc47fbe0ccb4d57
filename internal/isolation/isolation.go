// Package isolation decides which capsule.Mode a capsule should run
// under.
package isolation

import "github.com/edhor1608/Nexum/internal/capsule"

// Input is every signal that can force isolated execution.
type Input struct {
	IdentityCollisionDetected bool
	HighRiskSecretWorkflow    bool
	ForceIsolatedMode         bool
}

// SelectMode returns ModeIsolatedNixShell if any of input's signals are
// set, else ModeHostDefault. This is the single source of truth for
// mode selection; callers must not hardcode a default.
func SelectMode(input Input) capsule.Mode {
	if input.IdentityCollisionDetected || input.HighRiskSecretWorkflow || input.ForceIsolatedMode {
		return capsule.ModeIsolatedNixShell
	}
	return capsule.ModeHostDefault
}
