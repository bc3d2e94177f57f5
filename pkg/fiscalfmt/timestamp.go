package fiscalfmt

import (
	"fmt"
	"time"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// compactLayout is the fixed YYYYMMDDHHMMSS wire format for dtTrans.
const compactLayout = "20060102150405"

// reportingZone is the issuing jurisdiction's wall clock. The protocol pins a
// fixed UTC-5 offset; it does not follow DST.
var reportingZone = time.FixedZone("EST", -5*60*60)

// LocalCompactTimestamp converts a UTC instant to the reporting jurisdiction's
// local time and formats it as YYYYMMDDHHMMSS.
func LocalCompactTimestamp(t time.Time) (string, error) {
	if t.IsZero() {
		return "", fmt.Errorf("%w: zero timestamp", apperror.ErrInvalidTimestamp)
	}
	return t.In(reportingZone).Format(compactLayout), nil
}

// ParseCompactTimestamp reads a YYYYMMDDHHMMSS string back into a time in the
// reporting zone. Used when reconstructing receipts from stored responses.
func ParseCompactTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(compactLayout, s, reportingZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperror.ErrInvalidTimestamp, err)
	}
	return t, nil
}
