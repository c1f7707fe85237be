package schemas

import (
	"context"
)

// -- Component Interfaces --

// GeoResolver attaches network-origin metadata to a login attempt. Implementations
// must never fail: unresolved fields carry the Unknown sentinel.
type GeoResolver interface {
	Resolve(ctx context.Context) GeoInfo
}

// AccountRunner performs one complete login attempt for a single credential. It
// always returns a result; failures are represented as data, not errors.
type AccountRunner interface {
	Run(ctx context.Context, cred Credential) AccountResult
}

// Orchestrator sequences AccountRunner invocations for a whole run.
type Orchestrator interface {
	RunAll(ctx context.Context, creds []Credential) RunSummary
}

// Notifier delivers a finished RunSummary. Delivery problems are absorbed.
type Notifier interface {
	Dispatch(ctx context.Context, summary RunSummary)
}
