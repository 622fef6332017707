// Package mode decides between single-tenant and multi-tenant wiring.
// The decision is made exactly once, at startup; components receive the
// concrete collaborators for the chosen mode and never branch on it again.
package mode

import "strings"

// Mode is the deployment mode of the server process.
type Mode int

const (
	// Single is the desktop-style deployment: one implicit principal, no
	// credential verification, no per-user path prefixes.
	Single Mode = iota

	// Multi is the shared-fleet deployment: every protected operation
	// requires a verified principal and the isolation kernel is active.
	Multi
)

func (m Mode) String() string {
	if m == Multi {
		return "multi"
	}
	return "single"
}

// Detect resolves the deployment mode.
//
// Priority:
//  1. an explicit DEPLOYMENT_MODE value ("single"/"local", "multi"/"k8s")
//  2. a postgres DATABASE_URL implies multi-tenant operation
//  3. default to single
//
// An unrecognised explicit value falls through to the URL heuristic so a
// typo degrades loudly (the caller logs it) rather than silently disabling
// isolation the other way around.
func Detect(deploymentMode, databaseURL string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(deploymentMode)) {
	case "multi", "kubernetes", "k8s":
		return Multi, true
	case "single", "desktop", "local":
		return Single, true
	}

	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return Multi, deploymentMode == ""
	}
	return Single, deploymentMode == ""
}
