// Package sandbox is the only component permitted to turn an externally
// supplied filesystem path into one that file and process operations may
// use. Every other package treats its output as opaque and must operate on
// the returned path, never on the input.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrPathEscape is returned for every candidate that cannot be proven to
// stay inside the caller's root: traversal, symlinks pointing out,
// embedded NUL bytes. It folds to a not-found at the boundary so probing
// reveals nothing.
var ErrPathEscape = errors.New("path escapes workspace root")

// Sandbox computes and validates user-scoped filesystem paths.
type Sandbox interface {
	// UserRoot returns the canonical root for the user. Deterministic;
	// creates nothing.
	UserRoot(userID uuid.UUID) string

	// Resolve normalises candidate (absolute, or relative to the user
	// root), canonicalises it against the live filesystem, and verifies the
	// result is a descendant of UserRoot. Callers MUST use the returned
	// path, not the candidate.
	Resolve(userID uuid.UUID, candidate string) (string, error)

	// EnsureRoot idempotently creates the user root with restrictive
	// permissions and returns it.
	EnsureRoot(userID uuid.UUID) (string, error)
}

// UserSandbox confines each user to ${root}/${user_id}. It is wired in
// multi-tenant mode.
type UserSandbox struct {
	root string
}

// New builds a UserSandbox over the shared workspace root. The root itself
// is cleaned once; per-request work touches only the user subtree.
func New(workspaceRoot string) *UserSandbox {
	return &UserSandbox{root: filepath.Clean(workspaceRoot)}
}

func (s *UserSandbox) UserRoot(userID uuid.UUID) string {
	return filepath.Join(s.root, userID.String())
}

func (s *UserSandbox) EnsureRoot(userID uuid.UUID) (string, error) {
	root := s.UserRoot(userID)
	if err := os.MkdirAll(root, 0o700); err != nil {
		return "", fmt.Errorf("creating user root: %w", err)
	}
	// MkdirAll is a no-op on an existing directory and leaves its mode
	// alone, so re-assert it.
	if err := os.Chmod(root, 0o700); err != nil {
		return "", fmt.Errorf("restricting user root: %w", err)
	}
	return root, nil
}

func (s *UserSandbox) Resolve(userID uuid.UUID, candidate string) (string, error) {
	return resolveWithin(s.UserRoot(userID), candidate)
}

// resolveWithin implements canonicalise-then-compare for a single root.
func resolveWithin(root, candidate string) (string, error) {
	if candidate == "" || strings.ContainsRune(candidate, 0) {
		return "", ErrPathEscape
	}

	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	candidate = filepath.Clean(candidate)

	// Canonicalise the longest existing prefix so symlinks anywhere on the
	// path are resolved, then re-attach the not-yet-existing tail. The tail
	// was already cleaned, so a surviving ".." means the candidate tried to
	// climb through a directory that does not exist; reject it.
	prefix, tail, err := splitExisting(candidate)
	if err != nil {
		return "", err
	}
	for _, seg := range strings.Split(tail, string(filepath.Separator)) {
		if seg == ".." {
			return "", ErrPathEscape
		}
	}

	resolved := prefix
	if tail != "" {
		resolved = filepath.Join(prefix, tail)
	}

	canonicalRoot, err := canonicalRootPath(root)
	if err != nil {
		return "", err
	}
	if !isPathPrefix(canonicalRoot, resolved) {
		return "", ErrPathEscape
	}
	return resolved, nil
}

// splitExisting canonicalises the longest existing prefix of path and
// returns it with the remaining (non-existent) tail.
func splitExisting(path string) (prefix, tail string, err error) {
	p := path
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return resolved, tail, nil
		}
		if !os.IsNotExist(err) {
			return "", "", fmt.Errorf("canonicalising %s: %w", p, ErrPathEscape)
		}

		dir, base := filepath.Split(p)
		if dir != string(filepath.Separator) {
			dir = strings.TrimRight(dir, string(filepath.Separator))
		}
		if dir == "" || dir == p {
			// Ran out of components without hitting an existing directory.
			return "", "", ErrPathEscape
		}
		tail = filepath.Join(base, tail)
		p = dir
	}
}

// canonicalRootPath resolves the root itself; before the root exists its
// cleaned form is used for comparison.
func canonicalRootPath(root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err == nil {
		return resolved, nil
	}
	if os.IsNotExist(err) {
		return filepath.Clean(root), nil
	}
	return "", fmt.Errorf("canonicalising root: %w", ErrPathEscape)
}

// isPathPrefix reports whether path is root or a descendant of root,
// comparing whole components: /w/aa is not a prefix of /w/aab.
func isPathPrefix(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
