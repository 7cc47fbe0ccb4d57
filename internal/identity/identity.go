// Package identity decides how a capsule's browser surface should be
// launched.
package identity

import (
	"fmt"
	"path/filepath"
)

// ProfileRoot is where per-capsule browser profiles live.
const ProfileRoot = "/tmp/nexum/profiles"

// ProfileDirForCapsule returns the isolated browser profile directory
// for capsuleID.
func ProfileDirForCapsule(capsuleID string) string {
	return filepath.Join(ProfileRoot, capsuleID)
}

// BrowserLaunchCommand returns the shell command used to open url for
// capsuleID. When collisionDetected is true the browser launches under
// a dedicated profile to avoid clobbering another capsule's session
// cookies; otherwise the host's default handler is used.
func BrowserLaunchCommand(url, capsuleID string, collisionDetected bool) string {
	if collisionDetected {
		return fmt.Sprintf("firefox --profile %s %s", ProfileDirForCapsule(capsuleID), url)
	}
	return fmt.Sprintf("xdg-open %s", url)
}
