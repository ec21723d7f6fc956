// Package query splits URLs into their base and query parameters.
package query

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/samber/lo"
)

// Param is a single key=value pair from a query string
type Param struct {
	Key   string
	Value string
}

// Split separates url at its first "?". Later "?" characters belong to the
// query. ok is false when url has no query at all.
func Split(url string) (base string, params []Param, ok bool) {
	base, rawQuery, ok := strings.Cut(url, "?")
	if !ok {
		return base, nil, false
	}
	params = lo.Map(strings.Split(rawQuery, "&"), func(s string, _ int) Param {
		return ParseParam(s)
	})
	return base, params, true
}

// ParseParam splits s at its first "=" and percent-decodes the value
func ParseParam(s string) Param {
	key, value, _ := strings.Cut(s, "=")
	return Param{Key: key, Value: Unescape(value)}
}

// Unescape decodes %XX escapes. Malformed escapes are kept as they are and
// "+" is not treated as a space. Each byte of invalid UTF-8 after decoding
// is replaced with U+FFFD.
func Unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}
	return toValidUTF8(buf)
}

// toValidUTF8 replaces each maximal invalid subsequence with U+FFFD: a stray
// byte gets its own replacement, a truncated sequence gets one
func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			size = invalidLen(b)
		}
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// invalidLen returns how many bytes of b start a sequence that never
// completes
func invalidLen(b []byte) int {
	n, lo, hi := 0, byte(0x80), byte(0xBF)
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		n = 2
	case c == 0xE0:
		n, lo = 3, 0xA0
	case c == 0xED:
		n, hi = 3, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		n = 3
	case c == 0xF0:
		n, lo = 4, 0x90
	case c >= 0xF1 && c <= 0xF3:
		n = 4
	case c == 0xF4:
		n, hi = 4, 0x8F
	default:
		return 1
	}

	i := 1
	for ; i < n && i < len(b); i++ {
		if b[i] < lo || b[i] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return i
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

var keyColor = color.New(color.FgCyan, color.Bold)

// Format writes one aligned "key: value" line per param. The key column is
// as wide as the longest key that does not exceed maxKeyWidth; longer keys
// overflow and are separated from their value by a tab instead of a space.
func Format(w io.Writer, params []Param, maxKeyWidth int) error {
	width := 0
	for _, p := range params {
		if n := utf8.RuneCountInString(p.Key); n <= maxKeyWidth {
			width = max(width, n)
		}
	}

	for _, p := range params {
		label := p.Key + ":"
		n := utf8.RuneCountInString(label)
		sep := " "
		if n > width+1 {
			sep = "\t"
		} else {
			label += strings.Repeat(" ", width+1-n)
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", keyColor.Sprint(label), sep, p.Value); err != nil {
			return err
		}
	}
	return nil
}
