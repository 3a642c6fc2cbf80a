package naming

import (
	"strings"
	"unicode"
)

var commonInitialisms = []string{
	"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS",
	"ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL",
	"SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "UUID", "URI", "URL", "UTF8",
	"VM", "XML", "XMPP", "XSRF", "XSS",
}

// Caser converts identifiers between cases. Words matching one of its
// initialisms keep their upper-case spelling in Pascal and camel case.
// A Caser is immutable once built.
type Caser struct {
	initialisms map[string]bool
}

// NewCaser returns a Caser knowing the common initialisms plus additional.
func NewCaser(additional ...string) *Caser {
	c := &Caser{initialisms: make(map[string]bool, len(commonInitialisms)+len(additional))}
	for _, init := range commonInitialisms {
		c.initialisms[init] = true
	}
	for _, init := range additional {
		c.initialisms[strings.ToUpper(init)] = true
	}
	return c
}

// Plain has no initialisms: every word is capitalized the same way.
var Plain = &Caser{initialisms: map[string]bool{}}

func (c *Caser) word(w string) string {
	upper := strings.ToUpper(w)
	if c.initialisms[upper] {
		return upper
	}
	return capitalize(w)
}

func (c *Caser) PascalCase(s string) string {
	var result strings.Builder
	for _, word := range splitWords(s) {
		result.WriteString(c.word(word))
	}
	return result.String()
}

func (c *Caser) CamelCase(s string) string {
	var result strings.Builder
	for i, word := range splitWords(s) {
		if i == 0 {
			result.WriteString(strings.ToLower(word))
			continue
		}
		result.WriteString(c.word(word))
	}
	return result.String()
}

func SnakeCase(s string) string {
	return joinLower(s, "_")
}

func KebabCase(s string) string {
	return joinLower(s, "-")
}

func joinLower(s, sep string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, sep)
}

func splitWords(s string) []string {
	var words []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			continue
		}

		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				if current.Len() > 0 {
					words = append(words, current.String())
					current.Reset()
				}
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// UpperFirst upper-cases the first rune and leaves the rest untouched.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// LowerFirst lower-cases the first rune and leaves the rest untouched.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
