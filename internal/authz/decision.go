package authz

import "errors"

// DenyKind classifies a deny decision for the HTTP boundary.
type DenyKind string

const (
	// DenyUnauthenticated maps to 401: missing, invalid or expired
	// credential, or an inactive account.
	DenyUnauthenticated DenyKind = "unauthenticated"
	// DenyForbidden maps to 403: authenticated but insufficient privilege.
	// Configuration errors also land here so misconfigured routes fail closed.
	DenyForbidden DenyKind = "forbidden"
)

var (
	// ErrUnauthenticated indicates a missing or unusable credential.
	ErrUnauthenticated = errors.New("authz: unauthenticated")
	// ErrForbidden indicates insufficient privilege for the route.
	ErrForbidden = errors.New("authz: forbidden")
	// ErrConfiguration indicates a route declares a constraint that cannot
	// be evaluated. Treated as forbidden at the boundary.
	ErrConfiguration = errors.New("authz: route misconfigured")
)

// Decision is the outcome of evaluating the guard chain for one request.
// Reason is machine-readable context for logs and the audit trail; the HTTP
// layer never echoes it verbatim to unauthenticated callers.
type Decision struct {
	Allowed bool
	Kind    DenyKind
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision of the given kind.
func Deny(kind DenyKind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}
