package report

import "strings"

var subscriptDigits = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
}

// Subscript converts trailing digits of a label to unicode subscripts,
// so "I1" renders as "I₁" in plot legends.
func Subscript(label string) string {
	var b strings.Builder
	for _, r := range label {
		if sub, ok := subscriptDigits[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
