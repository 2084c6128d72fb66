package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures Make.
type Option func(*config)

type config struct {
	separator string
	maxLength int
	lowercase bool
}

// Separator sets the string placed between words. Default "-".
func Separator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// MaxLength limits the slug to n bytes. A separator left dangling by the cut
// is removed. Zero or negative disables the limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Lowercase controls case folding. Default true.
func Lowercase(on bool) Option {
	return func(c *config) {
		c.lowercase = on
	}
}

// ligatures covers letters that have no canonical decomposition.
var ligatures = strings.NewReplacer(
	"ß", "s", "ẞ", "s",
	"æ", "a", "Æ", "a",
	"œ", "o", "Œ", "o",
	"ø", "o", "Ø", "o",
	"ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d",
	"ð", "d", "Ð", "d",
	"þ", "th", "Þ", "th",
	"ı", "i",
)

// Make converts s into a slug.
func Make(s string, opts ...Option) string {
	cfg := config{
		separator: "-",
		lowercase: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	folded := foldDiacritics(s)

	var b strings.Builder
	b.Grow(len(folded))

	pending := false
	for _, r := range folded {
		if !isASCIIAlnum(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteString(cfg.separator)
		}
		pending = false
		if cfg.lowercase {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	out := b.String()
	if cfg.maxLength > 0 && len(out) > cfg.maxLength {
		out = truncate(out, cfg.maxLength, cfg.separator)
	}

	return out
}

// foldDiacritics strips combining marks after canonical decomposition.
func foldDiacritics(s string) string {
	s = ligatures.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func truncate(s string, n int, sep string) string {
	s = s[:n]
	if sep == "" {
		return s
	}
	for strings.HasSuffix(s, sep) {
		s = strings.TrimSuffix(s, sep)
	}
	// Drop a dangling partial separator left by the cut.
	for i := len(sep) - 1; i > 0; i-- {
		if strings.HasSuffix(s, sep[:i]) {
			return strings.TrimSuffix(s, sep[:i])
		}
	}
	return s
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
