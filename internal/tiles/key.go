package tiles

import (
	"strconv"
	"unicode/utf16"
)

// LabelKey returns the stable directory name for a content label.
//
// The key is a 32-bit polynomial hash over the label's UTF-16 code units,
// starting at 23 and multiplying by 31, with two's-complement wrap-around.
// It is rendered in decimal and may be negative. Existing tile trees are
// laid out with these names, so the function must never change.
func LabelKey(label string) string {
	var hash int32 = 23
	for _, u := range utf16.Encode([]rune(label)) {
		hash = hash*31 + int32(u)
	}
	return strconv.FormatInt(int64(hash), 10)
}
