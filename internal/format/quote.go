package format

import (
	"fmt"
	"strings"
)

// quoteString renders a string literal value. The preferred quote is used
// unless the value contains more of it than of the alternative, which is how
// prettier picks quotes.
func quoteString(value string, single bool) string {
	q, alt := byte('"'), byte('\'')
	if single {
		q, alt = alt, q
	}
	if strings.Count(value, string(q)) > strings.Count(value, string(alt)) {
		q = alt
	}

	var sb strings.Builder
	sb.Grow(len(value) + 2)
	sb.WriteByte(q)
	for _, r := range value {
		switch r {
		case rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
