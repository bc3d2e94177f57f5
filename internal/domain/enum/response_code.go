package enum

// ResponseCode is the WEB-SRM reply code. The set is closed; anything the
// endpoint returns outside it is treated as a generic error.
type ResponseCode string

const (
	CodeSuccess          ResponseCode = "00"
	CodeInvalidSignature ResponseCode = "01"
	CodeMissingFields    ResponseCode = "02"
	CodeInvalidFormat    ResponseCode = "03"
	CodeDuplicate        ResponseCode = "04"
	CodeNotFound         ResponseCode = "05"
	CodeInvalidCert      ResponseCode = "30"
	CodeExpiredCert      ResponseCode = "31"
	CodeUnknownDevice    ResponseCode = "32"
	CodeServerError      ResponseCode = "98"
	CodeGenericError     ResponseCode = "99"

	// CodeTimeout is never issued by the protocol. The client records it when
	// a request times out before any response arrives.
	CodeTimeout ResponseCode = "TIMEOUT"
)

func (c ResponseCode) String() string {
	return string(c)
}

// IsSuccess reports whether the transaction was accepted.
func (c ResponseCode) IsSuccess() bool {
	return c == CodeSuccess
}

// IsRetryable reports whether a retry can plausibly succeed. Signature,
// certification, format and duplicate errors will fail identically on every
// attempt, so they go straight to failed_permanent.
func (c ResponseCode) IsRetryable() bool {
	switch c {
	case CodeTimeout, CodeServerError, CodeGenericError:
		return true
	default:
		return false
	}
}
