package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode indicates a processing mode name that is not recognized.
var ErrUnknownMode = errors.New("unknown processing mode")

// Mode selects the Markdown dialect.
type Mode int

const (
	// ModeMultiMarkdown is GFM plus footnotes, definition lists, ==highlight==
	// and code highlighting. Citations are available.
	ModeMultiMarkdown Mode = iota
	// ModeGFM is GitHub Flavored Markdown. Citations are available.
	ModeGFM
	// ModeCommonMark is strict CommonMark. Citations are never parsed.
	ModeCommonMark
)

func (m Mode) String() string {
	switch m {
	case ModeGFM:
		return "gfm"
	case ModeCommonMark:
		return "commonmark"
	default:
		return "multimarkdown"
	}
}

// CitationsAllowed reports whether citation syntax is recognized in m.
func (m Mode) CitationsAllowed() bool {
	return m != ModeCommonMark
}

// ParseMode maps a mode name to a Mode. Empty selects multimarkdown.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "multimarkdown", "mmd":
		return ModeMultiMarkdown, nil
	case "gfm", "github":
		return ModeGFM, nil
	case "commonmark", "cmark":
		return ModeCommonMark, nil
	default:
		return ModeMultiMarkdown, fmt.Errorf("%w: %q (want multimarkdown, gfm or commonmark)", ErrUnknownMode, name)
	}
}
