package monitor

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// readArtifact reads a spool artifact and decodes it to text. UTF-8 is tried
// first, then Windows-1252 (common for printer spools), and finally a
// byte-wise pass that keeps printable ASCII and turns everything else into
// newlines. An empty result after trimming means the artifact carried no
// usable text.
func readArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if utf8.Valid(data) {
		if text := string(data); strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		if text := string(decoded); strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	text := printableFallback(data)
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

// printableFallback maps each byte to its printable ASCII character or a
// newline, recovering text from raw printer control streams.
func printableFallback(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
