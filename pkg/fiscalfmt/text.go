package fiscalfmt

import (
	"fmt"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// deaccent decomposes accented characters and strips the combining marks,
// so "Café" becomes "Cafe" rather than "Caf".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeText normalizes free text to the restricted character set the
// protocol accepts: accented Latin letters lose their accents, every other
// non-ASCII code point is dropped, and the result is truncated to maxLength.
func SanitizeText(s string, maxLength int) (string, error) {
	if maxLength <= 0 {
		return "", fmt.Errorf("%w: maxLength must be positive, got %d", apperror.ErrInvalidInput, maxLength)
	}
	folded, _, err := transform.String(deaccent, s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}
	out := make([]rune, 0, len(folded))
	for _, r := range folded {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			continue
		}
		out = append(out, r)
		if len(out) == maxLength {
			break
		}
	}
	return string(out), nil
}
