package classifier

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lower-cases and strips unicode combining marks, so that accented or
// zalgo-decorated spellings of a forbidden term still match its plain form.
func foldText(text string) string {
	// the transform chain is stateful and must not be shared across goroutines
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(normFunc, strings.ToLower(text))
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return strings.ToLower(text)
	}
	return folded
}
