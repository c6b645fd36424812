package sync

import "errors"

// Batch-fatal and precondition failures. Per-child and per-row remote
// failures are never surfaced as errors from a pass; they are logged,
// counted as skips, and retried on the next cycle.
var (
	// ErrNotAuthorized means there is no authenticated owner, or the
	// requested owner does not match the session. Aborts the pipeline.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNoInternet means the remote backend is unreachable. Pull
	// precondition; sync stays best-effort and retries later.
	ErrNoInternet = errors.New("no internet connection")

	// ErrPushNotConfirmed means a pull was declined because the
	// required preceding push has not completed successfully.
	ErrPushNotConfirmed = errors.New("push not confirmed")

	// ErrIdentityUnresolved means a child could not be provisioned
	// remotely; dependent rows are skipped for this cycle, not dropped.
	ErrIdentityUnresolved = errors.New("identity unresolved")
)
