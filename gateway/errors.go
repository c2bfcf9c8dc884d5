package gateway

import "errors"

// Kind classifies gateway failures so handlers can pick the right
// user-facing message. None of these are retried automatically.
type Kind int

const (
	// KindValidation: the input was rejected before any network call.
	KindValidation Kind = iota
	// KindAuthentication: the call was attempted without a valid credential.
	KindAuthentication
	// KindRateLimited: the upstream returned 429.
	KindRateLimited
	// KindUpstreamMalformed: the upstream response was missing an expected field.
	KindUpstreamMalformed
	// KindUnavailable: any other failure reaching the gateway or upstream.
	KindUnavailable
)

// Error carries the failure kind plus a message safe to show the user.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsKind reports whether err is a gateway Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}
