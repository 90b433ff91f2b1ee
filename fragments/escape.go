package fragments

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// DoubleQuote encloses values in the formatted (V2) layout.
const DoubleQuote = '"'

// Escape returns value with every occurrence of escape and of the
// given delimiters prefixed by escape. If quote is true, the result
// is wrapped in double quotes.
func Escape(value string, delimiters []rune, escape rune, quote bool) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	if quote {
		b.WriteRune(DoubleQuote)
	}
	for _, c := range value {
		if c == escape || slices.Contains(delimiters, c) {
			b.WriteRune(escape)
		}
		b.WriteRune(c)
	}
	if quote {
		b.WriteRune(DoubleQuote)
	}
	return b.String()
}

// Unescape reverses [Escape].
//
// An escape rune is dropped when it is active and the rune after it
// is another escape or one of delimiters. A lone escape rune in front
// of any other character is kept literally.
//
// If quote is true, payload is first trimmed of surrounding
// whitespace and of one pair of surrounding double quotes.
func Unescape(payload string, delimiters []rune, escape rune, quote bool) string {
	if payload == "" {
		return payload
	}
	trimmed := strings.TrimSpace(payload)
	if utf8.RuneCountInString(trimmed) < 2 {
		if quote {
			return trimmed
		}
		return payload
	}

	if quote {
		payload = strings.TrimPrefix(trimmed, string(DoubleQuote))
		payload = strings.TrimSuffix(payload, string(DoubleQuote))
		if payload == "" {
			return ""
		}
	}

	var (
		b        strings.Builder
		escaping bool
		prev     rune
		started  bool
	)
	b.Grow(len(payload))
	for _, c := range payload {
		if started {
			// prev is emitted unless it is an active escape in front
			// of something it escapes.
			if !(escaping && (c == escape || slices.Contains(delimiters, c))) {
				b.WriteRune(prev)
			}
		}
		if c == escape {
			escaping = !escaping
		} else {
			escaping = false
		}
		prev, started = c, true
	}
	b.WriteRune(prev)
	return b.String()
}
