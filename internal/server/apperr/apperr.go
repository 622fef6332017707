// Package apperr is the single point where internal failures are collapsed
// into the non-revealing codes the transport may emit. Internally the error
// types stay distinct so logs and tests can discriminate; the collapse
// happens here, at the final mapping step.
package apperr

import (
	"errors"
	"net/http"

	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/sandbox"
	"github.com/mlevkov/workbench/internal/server/auth"
	"github.com/mlevkov/workbench/internal/server/services"
)

// Kind is the externally observable classification of a refusal.
type Kind int

const (
	// Internal covers database, encryption and I/O failures.
	Internal Kind = iota

	// Unauthenticated: no, invalid, or expired credential.
	Unauthenticated

	// InvalidRequest: the credential was verifiable but malformed in
	// content (e.g. sub is not a UUID), or the request itself is unusable.
	InvalidRequest

	// NotFound: genuine absence, owner mismatch, path escape, and
	// unowned session/process access all map here, indistinguishably.
	NotFound

	// Conflict: unique violation on a tenant-scoped key.
	Conflict
)

// String returns the wire identifier for the kind.
func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidRequest:
		return "invalid_request"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code the transport emits for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind and a human-readable message safe for the wire.
// The message never contains tenant identifiers, paths, or key material.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// New builds a boundary error with an explicit kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Classify folds an internal error into its external kind.
//
// The folding rule: every isolation-related refusal past the ingress
// boundary — path escape, cross-tenant access, genuine absence — becomes
// NotFound. Only credential failures keep a truthful kind, because the
// caller must know whether to re-authenticate or re-form the request.
func Classify(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return &Error{Kind: Unauthenticated, Message: "authentication required", cause: err}

	case errors.Is(err, auth.ErrMissingClaim),
		errors.Is(err, auth.ErrInvalidClaim):
		return &Error{Kind: InvalidRequest, Message: "malformed credential", cause: err}

	case errors.Is(err, services.ErrValidation):
		return &Error{Kind: InvalidRequest, Message: "invalid request", cause: err}

	case errors.Is(err, sandbox.ErrPathEscape),
		errors.Is(err, common.ErrorNotFound):
		return &Error{Kind: NotFound, Message: "resource not found", cause: err}

	case errors.Is(err, common.ErrorConflict):
		return &Error{Kind: Conflict, Message: "resource already exists", cause: err}

	default:
		return &Error{Kind: Internal, Message: "internal error", cause: err}
	}
}
