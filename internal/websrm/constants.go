// Package websrm implements the client side of the WEB-SRM sales register
// reporting protocol: field mapping, request headers, submission and receipt
// references. Protocol vocabulary lives in internal/domain/enum; the numeric
// constants shared by every component live here.
package websrm

import "time"

const (
	// MaxTextLength bounds every free-text field in the payload.
	MaxTextLength = 128

	// GSTRate and QSTRate are the federal and Québec sales tax rates, kept
	// for receipt rendering and consistency checks. The adapter never
	// recomputes taxes, the order system owns that.
	GSTRate = 0.05
	QSTRate = 0.09975

	// DefaultMaxAttempts is the retry budget before an entry goes
	// failed_permanent.
	DefaultMaxAttempts = 5

	// DefaultBackoffBase seeds the exponential retry delay
	// (base * 2^attempts), DefaultBackoffCap bounds it.
	DefaultBackoffBase = 30 * time.Second
	DefaultBackoffCap  = 30 * time.Minute

	// DefaultRequestTimeout is the protocol's fixed per-request deadline.
	DefaultRequestTimeout = 15 * time.Second
)
