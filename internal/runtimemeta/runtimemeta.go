// Package runtimemeta derives the environment a capsule's launched
// processes run under.
package runtimemeta

import (
	"strconv"

	"github.com/edhor1608/Nexum/internal/capsule"
)

// Env builds the NEXUM_* environment variables a capsule's terminal,
// editor, and browser processes should inherit.
func Env(c capsule.Capsule) map[string]string {
	return map[string]string{
		"NEXUM_CAPSULE_ID":        c.CapsuleID,
		"NEXUM_CAPSULE_SLUG":      c.Slug,
		"NEXUM_CAPSULE_DOMAIN":    c.Domain(),
		"NEXUM_CAPSULE_WORKSPACE": strconv.Itoa(int(c.Workspace)),
		"NEXUM_PROCESS_LABEL":     TerminalProcessLabel(c.CapsuleID),
	}
}

// TerminalProcessLabel returns the process label used to tag a
// capsule's terminal so it can be found and focused later.
func TerminalProcessLabel(capsuleID string) string {
	return "nexum-terminal-" + capsuleID
}
