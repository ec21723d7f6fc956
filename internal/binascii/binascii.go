// Package binascii turns strings of binary digits back into text.
package binascii

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkSize is the number of binary digits per character
const ChunkSize = 8

// Decode converts a line of binary digits into characters, eight digits at a
// time. The last chunk may be shorter. Each chunk becomes the code point it
// encodes (0-255).
func Decode(line string) (string, error) {
	bits := strings.TrimRight(line, "\r\n")

	var b strings.Builder
	for i := 0; i < len(bits); i += ChunkSize {
		end := min(i+ChunkSize, len(bits))
		chunk := bits[i:end]

		n, err := strconv.ParseUint(strings.TrimSpace(chunk), 2, 8)
		if err != nil {
			return "", fmt.Errorf("invalid binary chunk %q: %w", chunk, err)
		}
		b.WriteRune(rune(n))
	}
	return b.String(), nil
}
