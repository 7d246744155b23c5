package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// strftimeLayouts maps strftime directives onto Go layout fragments.
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'B': "January",
	'b': "Jan",
	'h': "Jan",
	'd': "02",
	'e': "_2",
	'A': "Monday",
	'a': "Mon",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'Z': "MST",
	'z': "-0700",
	'j': "002",
}

// Strftime formats t with C strftime directives. Literal text is copied
// verbatim, so it is never mistaken for a Go layout fragment.
func Strftime(t time.Time, format string) (string, error) {
	if err := checkFormat(format); err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("%w: trailing %%", ErrInvalidDateFormat)
		}
		i++
		switch d := format[i]; d {
		case '%':
			b.WriteByte('%')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'F':
			b.WriteString(t.Format(time.DateOnly))
		case 'T':
			b.WriteString(t.Format(time.TimeOnly))
		case 'u':
			wd := int(t.Weekday())
			if wd == 0 {
				wd = 7
			}
			b.WriteString(strconv.Itoa(wd))
		case 'w':
			b.WriteString(strconv.Itoa(int(t.Weekday())))
		default:
			layout, ok := strftimeLayouts[d]
			if !ok {
				return "", fmt.Errorf("%w: unknown directive %%%c", ErrInvalidDateFormat, d)
			}
			b.WriteString(t.Format(layout))
		}
	}
	return b.String(), nil
}
