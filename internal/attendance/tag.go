package attendance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeTag returns the comparison form of an NFC tag id: trimmed,
// NFC-normalized and case folded. A Caser is stateful, so one is built per
// call.
func normalizeTag(tag string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(tag)))
}
