package crawler

import (
	"strconv"
	"unicode/utf16"
)

// Hash computes the 32-bit rolling hash used to dedup consecutive
// extractions: h = (h << 5) - h + code over UTF-16 code units, wrapping at
// 32 bits each step. Collisions are an accepted property of this hash, it
// only guards against re-uploading identical strings.
func Hash(content string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(content)) {
		h = (h << 5) - h + int32(c)
	}
	return strconv.FormatInt(int64(h), 10)
}
