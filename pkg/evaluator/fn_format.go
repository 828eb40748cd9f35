package evaluator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDateTimeFormat is used when a date-time function is not given an
// explicit format.
const DefaultDateTimeFormat = "yyyy-MM-ddTHH:mm:ss.fffZ"

// standardFormats expands single-character .NET standard format strings.
var standardFormats = map[byte]string{
	'd': "M/d/yyyy",
	'D': "dddd, MMMM d, yyyy",
	'f': "dddd, MMMM d, yyyy h:mm tt",
	'F': "dddd, MMMM d, yyyy h:mm:ss tt",
	'g': "M/d/yyyy h:mm tt",
	'G': "M/d/yyyy h:mm:ss tt",
	'm': "MMMM d",
	'M': "MMMM d",
	'o': "yyyy-MM-ddTHH:mm:ss.fffffffK",
	'O': "yyyy-MM-ddTHH:mm:ss.fffffffK",
	'r': "ddd, dd MMM yyyy HH:mm:ss 'GMT'",
	'R': "ddd, dd MMM yyyy HH:mm:ss 'GMT'",
	's': "yyyy-MM-ddTHH:mm:ss",
	't': "h:mm tt",
	'T': "h:mm:ss tt",
	'u': "yyyy-MM-dd HH:mm:ss'Z'",
	'U': "dddd, MMMM d, yyyy h:mm:ss tt",
	'y': "MMMM yyyy",
	'Y': "MMMM yyyy",
}

// FormatDateTime renders t with a .NET-style date-time format string,
// either a single-character standard format or a custom pattern such as
// "yyyy-MM-dd HH:mm". Letters that are not specifiers are copied verbatim.
func FormatDateTime(t time.Time, format string) (string, error) {
	if format == "" {
		format = DefaultDateTimeFormat
	}
	if len(format) == 1 {
		pattern, ok := standardFormats[format[0]]
		if !ok {
			return "", fmt.Errorf("%q is not a valid datetime format", format)
		}
		switch format[0] {
		case 'r', 'R', 'u', 'U':
			t = t.UTC()
		}
		format = pattern
	}

	var sb strings.Builder
	i := 0
	for i < len(format) {
		c := format[i]
		switch c {
		case '\'', '"':
			end := strings.IndexByte(format[i+1:], c)
			if end < 0 {
				return "", fmt.Errorf("unterminated quote in datetime format %q", format)
			}
			sb.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		case '\\':
			if i+1 < len(format) {
				sb.WriteByte(format[i+1])
			}
			i += 2
			continue
		case '%':
			i++
			continue
		}

		n := 1
		for i+n < len(format) && format[i+n] == c {
			n++
		}
		if err := writeSpecifier(&sb, t, c, n); err != nil {
			return "", err
		}
		i += n
	}
	return sb.String(), nil
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func writeSpecifier(sb *strings.Builder, t time.Time, c byte, n int) error {
	switch c {
	case 'd':
		switch n {
		case 1, 2:
			sb.WriteString(pad(t.Day(), n))
		case 3:
			sb.WriteString(t.Weekday().String()[:3])
		default:
			sb.WriteString(t.Weekday().String())
		}
	case 'f', 'F':
		if n > 7 {
			return fmt.Errorf("too many %c specifiers in datetime format", c)
		}
		frac := pad(t.Nanosecond()/100, 7)[:n]
		if c == 'F' {
			frac = strings.TrimRight(frac, "0")
			if frac == "" {
				s := sb.String()
				if strings.HasSuffix(s, ".") {
					sb.Reset()
					sb.WriteString(s[:len(s)-1])
				}
			}
		}
		sb.WriteString(frac)
	case 'g':
		sb.WriteString("A.D.")
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		sb.WriteString(pad(h, min(n, 2)))
	case 'H':
		sb.WriteString(pad(t.Hour(), min(n, 2)))
	case 'K':
		sb.WriteString(zoneSuffix(t, true))
	case 'm':
		sb.WriteString(pad(t.Minute(), min(n, 2)))
	case 'M':
		switch n {
		case 1, 2:
			sb.WriteString(pad(int(t.Month()), n))
		case 3:
			sb.WriteString(t.Month().String()[:3])
		default:
			sb.WriteString(t.Month().String())
		}
	case 's':
		sb.WriteString(pad(t.Second(), min(n, 2)))
	case 't':
		ampm := "AM"
		if t.Hour() >= 12 {
			ampm = "PM"
		}
		if n == 1 {
			ampm = ampm[:1]
		}
		sb.WriteString(ampm)
	case 'y':
		switch n {
		case 1:
			sb.WriteString(strconv.Itoa(t.Year() % 100))
		case 2:
			sb.WriteString(pad(t.Year()%100, 2))
		default:
			sb.WriteString(pad(t.Year(), n))
		}
	case 'z':
		_, offset := t.Zone()
		sign := "+"
		if offset < 0 {
			sign, offset = "-", -offset
		}
		hours, minutes := offset/3600, offset%3600/60
		switch n {
		case 1:
			sb.WriteString(sign + strconv.Itoa(hours))
		case 2:
			sb.WriteString(sign + pad(hours, 2))
		default:
			sb.WriteString(sign + pad(hours, 2) + ":" + pad(minutes, 2))
		}
	default:
		sb.WriteString(strings.Repeat(string(c), n))
	}
	return nil
}

func zoneSuffix(t time.Time, zulu bool) string {
	_, offset := t.Zone()
	if offset == 0 && zulu {
		return "Z"
	}
	sign := "+"
	if offset < 0 {
		sign, offset = "-", -offset
	}
	return sign + pad(offset/3600, 2) + ":" + pad(offset%3600/60, 2)
}

// formatDefault renders t in UTC with DefaultDateTimeFormat.
func formatDefault(t time.Time) string {
	s, _ := FormatDateTime(t.UTC(), DefaultDateTimeFormat)
	return s
}
