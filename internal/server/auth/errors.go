package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken — no credential was presented at all.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken — malformed token or signature mismatch.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken — exp is not strictly greater than the current time.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidClaim — a claim is present but unusable (sub not a UUID).
	ErrInvalidClaim = errors.New("invalid claim")

	// ErrMissingClaim is the base of MissingClaimError; match with
	// errors.Is(err, ErrMissingClaim).
	ErrMissingClaim = errors.New("missing required claim")
)

// MissingClaimError names the claim that was absent from an otherwise
// well-formed token.
type MissingClaimError struct {
	Claim string
}

func (e *MissingClaimError) Error() string {
	return fmt.Sprintf("missing required claim: %s", e.Claim)
}

func (e *MissingClaimError) Unwrap() error { return ErrMissingClaim }
