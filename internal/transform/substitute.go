package transform

import (
	"log/slog"
	"strings"

	"github.com/alnah/go-mdcite/internal/metadata"
)

// Substituter replaces [%...] variables with metadata values.
type Substituter struct {
	// TransformsEnabled turns on KEY:transform(...) chains. When false the
	// whole payload is the metadata key.
	TransformsEnabled bool
	// Logger receives fallbacks at debug level. Nil discards them.
	Logger *slog.Logger
}

// Substitute is Substituter.Substitute with no logger.
func Substitute(text string, meta metadata.List, transformsEnabled bool) string {
	return Substituter{TransformsEnabled: transformsEnabled}.Substitute(text, meta)
}

// Substitute returns text with every resolvable variable replaced. Variables
// do not span lines; an unbalanced "[%" is left as literal text.
func (s Substituter) Substitute(text string, meta metadata.List) string {
	if !strings.Contains(text, "[%") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for {
		open := strings.Index(text[pos:], "[%")
		if open == -1 {
			b.WriteString(text[pos:])
			return b.String()
		}
		open += pos

		end := closingBracket(text, open)
		if end == -1 {
			b.WriteString(text[pos : open+2])
			pos = open + 2
			continue
		}

		b.WriteString(text[pos:open])
		if value, ok := s.resolve(text[open+2:end], meta); ok {
			b.WriteString(value)
		} else {
			b.WriteString(text[open : end+1])
		}
		pos = end + 1
	}
}

// closingBracket finds the ']' matching the '[' at open, tracking nested
// brackets and skipping backslash-escaped characters.
func closingBracket(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (s Substituter) resolve(payload string, meta metadata.List) (string, bool) {
	if !s.TransformsEnabled {
		return meta.Get(payload)
	}

	key, steps, err := ParseChain(payload)
	raw, ok := meta.Get(key)
	if !ok {
		return "", false
	}
	if err != nil {
		s.fallback(key, err)
		return raw, true
	}

	out, err := Apply(Scalar(raw), steps)
	if err != nil {
		s.fallback(key, err)
		return raw, true
	}
	return out.String(), true
}

func (s Substituter) fallback(key string, err error) {
	if s.Logger != nil {
		s.Logger.Debug("transform chain failed, using plain value", "key", key, "error", err)
	}
}

// Apply runs steps over v. Unknown transform names are skipped. The first
// failing step aborts the chain.
func Apply(v Value, steps []Step) (Value, error) {
	for _, step := range steps {
		fn, ok := Lookup(step.Name)
		if !ok {
			continue
		}
		next, err := fn(v, step.Options)
		if err != nil {
			return Value{}, err
		}
		v = next
	}
	return v, nil
}
