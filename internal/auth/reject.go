package auth

import (
	"errors"
	"fmt"
)

// RejectReason classifies why a presented token was refused. All reasons are
// handled identically for authorization purposes; they diverge only in logs.
type RejectReason string

const (
	ReasonMalformed       RejectReason = "malformed"
	ReasonBadSignature    RejectReason = "bad-signature"
	ReasonExpired         RejectReason = "expired"
	ReasonSubjectNotFound RejectReason = "subject-not-found"

	// ReasonRevoked covers tokens denylisted before natural expiry. It is
	// never sent to callers; Wire folds it into expired so responses do not
	// reveal that revocation happened.
	ReasonRevoked RejectReason = "revoked"
)

// Wire maps an internal reason to the four-value response taxonomy.
func (r RejectReason) Wire() RejectReason {
	if r == ReasonRevoked {
		return ReasonExpired
	}
	return r
}

// RejectError is the value returned for every expected verification failure.
// Malformed, expired and unknown-subject tokens are routine, not exceptional.
type RejectError struct {
	Reason RejectReason
	cause  error
}

// NewRejectError wraps a cause with its classification.
func NewRejectError(reason RejectReason, cause error) *RejectError {
	return &RejectError{Reason: reason, cause: cause}
}

func (e *RejectError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("token rejected (%s): %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("token rejected (%s)", e.Reason)
}

func (e *RejectError) Unwrap() error {
	return e.cause
}

// ReasonOf extracts the rejection reason from an error, defaulting to
// malformed for anything unclassified.
func ReasonOf(err error) RejectReason {
	if err == nil {
		return ""
	}
	if rej, ok := AsReject(err); ok {
		return rej.Reason
	}
	return ReasonMalformed
}

// AsReject unwraps a RejectError if present.
func AsReject(err error) (*RejectError, bool) {
	var rej *RejectError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
