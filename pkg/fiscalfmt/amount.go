// Package fiscalfmt formats order data into the shapes the WEB-SRM payload
// requires: integer cent amounts, restricted ASCII text and compact local
// timestamps.
package fiscalfmt

import (
	"fmt"
	"math"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// maxCents guards against float64 values too large for an exact cent
// representation.
const maxCents = float64(math.MaxInt64 / 2)

// AmountCents converts a decimal currency amount to an integer number of
// cents, rounding halves away from zero. Non-finite inputs fail.
func AmountCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount %v is not finite", apperror.ErrInvalidAmount, amount)
	}
	scaled := amount * 100
	if scaled > maxCents || scaled < -maxCents {
		return 0, fmt.Errorf("%w: amount %v overflows cents", apperror.ErrInvalidAmount, amount)
	}
	return int64(math.Round(scaled)), nil
}
