package sandbox

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// SharedSandbox is the single-tenant variant: every principal maps to the
// workspace root itself. Paths are still canonicalised and confined to the
// root so a misbehaving tool cannot wander the host filesystem, but there
// is no per-user partitioning.
type SharedSandbox struct {
	root string
}

func NewShared(workspaceRoot string) *SharedSandbox {
	return &SharedSandbox{root: New(workspaceRoot).root}
}

func (s *SharedSandbox) UserRoot(uuid.UUID) string {
	return s.root
}

func (s *SharedSandbox) EnsureRoot(uuid.UUID) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("creating workspace root: %w", err)
	}
	return s.root, nil
}

func (s *SharedSandbox) Resolve(_ uuid.UUID, candidate string) (string, error) {
	return resolveWithin(s.root, candidate)
}
