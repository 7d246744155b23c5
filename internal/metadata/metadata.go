package metadata

import (
	"strings"
	"unicode"

	"github.com/alnah/go-mdcite/internal/yamlutil"
)

// Item is a single metadata key/value pair.
type Item struct {
	Key   string
	Value string
}

// List is an ordered collection of metadata items. Several items may share
// a key until the list goes through Merge.
type List []Item

// NormalizeKey lowercases key and drops all whitespace.
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Get returns the value of the first item whose key matches.
func (l List) Get(key string) (string, bool) {
	want := NormalizeKey(key)
	for _, item := range l {
		if NormalizeKey(item.Key) == want {
			return item.Value, true
		}
	}
	return "", false
}

// Value returns the value for key, or "" when absent.
func (l List) Value(key string) string {
	v, _ := l.Get(key)
	return v
}

// Has reports whether any item matches key.
func (l List) Has(key string) bool {
	_, ok := l.Get(key)
	return ok
}

// Bool interprets the value for key as a flag. Recognized true values are
// "true", "yes", "on" and "1" in any case; everything else is false.
func (l List) Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(l.Value(key))) {
	case "true", "yes", "on", "1":
		return true
	}
	return false
}

// Keys returns the item keys in list order.
func (l List) Keys() []string {
	keys := make([]string, len(l))
	for i, item := range l {
		keys[i] = item.Key
	}
	return keys
}

// Clone returns an independent copy of l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// without returns a fresh list with every item matching key removed.
func (l List) without(key string) List {
	want := NormalizeKey(key)
	out := make(List, 0, len(l))
	for _, item := range l {
		if NormalizeKey(item.Key) != want {
			out = append(out, item)
		}
	}
	return out
}

// FrontMatter renders the list as a YAML front matter block, quoting
// values where YAML requires it. An empty list renders as "".
func (l List) FrontMatter() (string, error) {
	if len(l) == 0 {
		return "", nil
	}
	pairs := make([]yamlutil.Pair, len(l))
	for i, item := range l {
		pairs[i] = yamlutil.Pair{Key: item.Key, Value: item.Value}
	}
	data, err := yamlutil.MarshalOrdered(pairs)
	if err != nil {
		return "", err
	}
	return "---\n" + string(data) + "---\n", nil
}
