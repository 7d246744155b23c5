package transform

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-mdcite/internal/dateutil"
)

const (
	maxRepeat    = 100
	maxPadWidth  = 1000
	maxResultLen = 64 << 10
)

// Func is a transform: it receives the current value and the raw option
// text between the parentheses.
type Func func(v Value, opts string) (Value, error)

var catalogue = map[string]Func{
	"upper":       scalarFunc(func(s string) string { return cases.Upper(language.Und).String(s) }),
	"lower":       scalarFunc(func(s string) string { return cases.Lower(language.Und).String(s) }),
	"trim":        scalarFunc(strings.TrimSpace),
	"title":       scalarFunc(func(s string) string { return cases.Title(language.Und).String(s) }),
	"capitalize":  scalarFunc(capitalize),
	"slug":        scalarFunc(slugify),
	"slugify":     scalarFunc(slugify),
	"escape":      scalarFunc(html.EscapeString),
	"html_escape": scalarFunc(html.EscapeString),
	"basename":    scalarFunc(basename),
	"urlencode":   scalarFunc(urlEncode),
	"urldecode":   urlDecode,
	"strftime":    strftime,
	"replace":     replace,
	"substring":   substring,
	"substr":      substring,
	"truncate":    truncate,
	"default":     defaultValue,
	"prefix":      prefix,
	"suffix":      suffix,
	"remove":      remove,
	"repeat":      repeat,
	"reverse":     reverse,
	"format":      format,
	"length":      length,
	"pad":         pad,
	"contains":    contains,
	"split":       split,
	"join":        join,
	"first":       first,
	"last":        last,
	"slice":       slice,
}

// Lookup returns the transform registered under name.
func Lookup(name string) (Func, bool) {
	fn, ok := catalogue[strings.ToLower(name)]
	return fn, ok
}

// Names lists the registered transform names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func scalarFunc(fn func(string) string) Func {
	return func(v Value, _ string) (Value, error) {
		return v.mapScalar(func(s string) (string, error) { return fn(s), nil })
	}
}

func intArg(s, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrBadOptions, what, s)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var nonSlug = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func slugify(s string) string {
	t := xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := xtransform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)
	return strings.Trim(nonSlug.ReplaceAllString(folded, "-"), "-")
}

func basename(s string) string {
	s = strings.TrimRight(s, `/\`)
	if i := strings.LastIndexAny(s, `/\`); i != -1 {
		return s[i+1:]
	}
	return s
}

func urlEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func urlDecode(v Value, _ string) (Value, error) {
	return v.mapScalar(func(s string) (string, error) {
		out, err := url.QueryUnescape(s)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return out, nil
	})
}

func strftime(v Value, opts string) (Value, error) {
	layout := unquote(opts)
	if strings.TrimSpace(layout) == "" {
		return Value{}, fmt.Errorf("%w: strftime needs a format", ErrBadOptions)
	}
	return v.mapScalar(func(s string) (string, error) {
		t, err := dateutil.ParseDate(s)
		if err != nil {
			return s, nil
		}
		out, err := dateutil.Format(t, layout)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadOptions, err)
		}
		return out, nil
	})
}

// replace supports replace(OLD,NEW) and replace(regex:PATTERN,NEW). The
// regex form splits at the last unescaped comma so patterns may hold commas.
func replace(v Value, opts string) (Value, error) {
	if pattern, ok := strings.CutPrefix(opts, "regex:"); ok {
		idx := lastUnescapedComma(pattern)
		if idx == -1 {
			return Value{}, fmt.Errorf("%w: replace(regex:PATTERN,NEW) needs a replacement", ErrBadOptions)
		}
		re, err := regexp.Compile(pattern[:idx])
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrBadOptions, err)
		}
		with := unquote(pattern[idx+1:])
		return v.mapScalar(func(s string) (string, error) {
			return re.ReplaceAllString(s, with), nil
		})
	}

	args := splitArgs(opts, 2)
	if len(args) != 2 || args[0] == "" {
		return Value{}, fmt.Errorf("%w: replace(OLD,NEW) got %q", ErrBadOptions, opts)
	}
	return v.mapScalar(func(s string) (string, error) {
		return strings.ReplaceAll(s, args[0], args[1]), nil
	})
}

// runeRange resolves start/end (negative counts from the end) against n.
func runeRange(start, end, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	start = min(max(start, 0), n)
	end = min(max(end, 0), n)
	if start > end {
		start = end
	}
	return start, end
}

func substring(v Value, opts string) (Value, error) {
	args := splitArgs(opts, 2)
	start, err := intArg(args[0], "start")
	if err != nil {
		return Value{}, err
	}
	end, hasEnd := 0, len(args) == 2 && args[1] != ""
	if hasEnd {
		if end, err = intArg(args[1], "end"); err != nil {
			return Value{}, err
		}
	}
	return v.mapScalar(func(s string) (string, error) {
		r := []rune(s)
		e := len(r)
		if hasEnd {
			e = end
		}
		from, to := runeRange(start, e, len(r))
		return string(r[from:to]), nil
	})
}

func truncate(v Value, opts string) (Value, error) {
	args := splitArgs(opts, 2)
	n, err := intArg(args[0], "length")
	if err != nil {
		return Value{}, err
	}
	if n < 0 {
		return Value{}, fmt.Errorf("%w: negative truncate length %d", ErrBadOptions, n)
	}
	tail := "..."
	if len(args) == 2 {
		tail = args[1]
	}
	return v.mapScalar(func(s string) (string, error) {
		r := []rune(s)
		if len(r) <= n {
			return s, nil
		}
		return string(r[:n]) + tail, nil
	})
}

func defaultValue(v Value, opts string) (Value, error) {
	if v.IsEmpty() {
		return Scalar(unquote(opts)), nil
	}
	return v, nil
}

func prefix(v Value, opts string) (Value, error) {
	p := unquote(opts)
	return v.mapScalar(func(s string) (string, error) { return p + s, nil })
}

func suffix(v Value, opts string) (Value, error) {
	p := unquote(opts)
	return v.mapScalar(func(s string) (string, error) { return s + p, nil })
}

func remove(v Value, opts string) (Value, error) {
	sub := unquote(opts)
	if sub == "" {
		return v, nil
	}
	return v.mapScalar(func(s string) (string, error) { return strings.ReplaceAll(s, sub, ""), nil })
}

func repeat(v Value, opts string) (Value, error) {
	n, err := intArg(opts, "count")
	if err != nil {
		return Value{}, err
	}
	if n < 0 || n > maxRepeat {
		return Value{}, fmt.Errorf("%w: repeat count %d outside 0..%d", ErrBadOptions, n, maxRepeat)
	}
	return v.mapScalar(func(s string) (string, error) {
		if len(s)*n > maxResultLen {
			return "", fmt.Errorf("%w: %d bytes", ErrResultTooBig, len(s)*n)
		}
		return strings.Repeat(s, n), nil
	})
}

func reverse(v Value, _ string) (Value, error) {
	if v.IsArray() {
		items := v.Items()
		slices.Reverse(items)
		return Array(items), nil
	}
	r := []rune(v.String())
	slices.Reverse(r)
	return Scalar(string(r)), nil
}

// formatSpec accepts a single printf verb with optional literal text around
// it. %i and %u are read as %d.
var formatSpec = regexp.MustCompile(`^([^%]*)%([-+ 0#]*)([0-9]{0,3})(\.[0-9]{1,3})?([diuxXofeEgG])([^%]*)$`)

func format(v Value, opts string) (Value, error) {
	m := formatSpec.FindStringSubmatch(unquote(opts))
	if m == nil {
		return Value{}, fmt.Errorf("%w: format(%s)", ErrBadOptions, opts)
	}
	verb := m[5]
	integer := false
	switch verb {
	case "i", "u":
		verb, integer = "d", true
	case "d", "x", "X", "o":
		integer = true
	}
	spec := m[1] + "%" + m[2] + m[3] + m[4] + verb + m[6]

	return v.mapScalar(func(s string) (string, error) {
		num, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
			return "", fmt.Errorf("%w: %q", ErrNotNumeric, s)
		}
		if integer {
			return fmt.Sprintf(spec, int64(num)), nil
		}
		return fmt.Sprintf(spec, num), nil
	})
}

func length(v Value, _ string) (Value, error) {
	if v.IsArray() {
		return Scalar(strconv.Itoa(len(v.items))), nil
	}
	return Scalar(strconv.Itoa(utf8.RuneCountInString(v.scalar))), nil
}

// pad left-pads to width runes; a negative width pads on the right.
func pad(v Value, opts string) (Value, error) {
	args := splitArgs(opts, 2)
	width, err := intArg(args[0], "width")
	if err != nil {
		return Value{}, err
	}
	if width > maxPadWidth || width < -maxPadWidth {
		return Value{}, fmt.Errorf("%w: pad width %d", ErrBadOptions, width)
	}
	fill := " "
	if len(args) == 2 && args[1] != "" {
		fill = args[1]
	}
	if utf8.RuneCountInString(fill) != 1 {
		return Value{}, fmt.Errorf("%w: pad character %q", ErrBadOptions, fill)
	}
	left := width >= 0
	if !left {
		width = -width
	}
	return v.mapScalar(func(s string) (string, error) {
		missing := width - utf8.RuneCountInString(s)
		if missing <= 0 {
			return s, nil
		}
		if left {
			return strings.Repeat(fill, missing) + s, nil
		}
		return s + strings.Repeat(fill, missing), nil
	})
}

// contains tests substring presence on scalars and membership on arrays.
func contains(v Value, opts string) (Value, error) {
	needle := unquote(opts)
	if v.IsArray() {
		found := slices.ContainsFunc(v.items, func(item string) bool {
			return strings.TrimSpace(item) == needle
		})
		return Scalar(strconv.FormatBool(found)), nil
	}
	return Scalar(strconv.FormatBool(strings.Contains(v.scalar, needle))), nil
}

// ---------------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------------

func split(v Value, opts string) (Value, error) {
	delim := ","
	if opts != "" {
		delim = unquote(opts)
	}
	if delim == "" {
		return Value{}, fmt.Errorf("%w: empty split delimiter", ErrBadOptions)
	}
	var parts []string
	for _, item := range v.Items() {
		for _, p := range strings.Split(item, delim) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	return Array(parts), nil
}

func join(v Value, opts string) (Value, error) {
	if !v.IsArray() {
		return v, nil
	}
	delim := ", "
	if opts != "" {
		delim = unquote(opts)
	}
	return Scalar(strings.Join(v.items, delim)), nil
}

func first(v Value, _ string) (Value, error) {
	if !v.IsArray() {
		return v, nil
	}
	if len(v.items) == 0 {
		return Scalar(""), nil
	}
	return Scalar(v.items[0]), nil
}

func last(v Value, _ string) (Value, error) {
	if !v.IsArray() {
		return v, nil
	}
	if len(v.items) == 0 {
		return Scalar(""), nil
	}
	return Scalar(v.items[len(v.items)-1]), nil
}

// slice takes count elements (or runes, for a scalar) from start. A
// negative start counts from the end; a missing count takes the rest.
func slice(v Value, opts string) (Value, error) {
	args := splitArgs(opts, 2)
	start, err := intArg(args[0], "start")
	if err != nil {
		return Value{}, err
	}
	count := -1
	if len(args) == 2 && args[1] != "" {
		if count, err = intArg(args[1], "count"); err != nil {
			return Value{}, err
		}
		if count < 0 {
			return Value{}, fmt.Errorf("%w: negative slice count %d", ErrBadOptions, count)
		}
	}
	bounds := func(n int) (int, int) {
		from, _ := runeRange(start, n, n)
		to := n
		if count >= 0 && count < n-from {
			to = from + count
		}
		return from, to
	}

	if v.IsArray() {
		from, to := bounds(len(v.items))
		return Array(v.items[from:to]), nil
	}
	r := []rune(v.scalar)
	from, to := bounds(len(r))
	return Scalar(string(r[from:to])), nil
}
