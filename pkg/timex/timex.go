// Package timex parses and reasons about TIMEX expressions, the compact
// ISO 8601 flavoured notation used to describe recognized dates and times:
//
//	2020-05-15        definite date
//	XXXX-05-15        every May 15th
//	XXXX-WXX-3        every Wednesday
//	T14:30            a time of day
//	2020-05-15T14:30  a date time
//	P2D, PT30M        durations
//	(2020-05-01,2020-05-08,P7D)  a range
//	TMO               morning (a time range)
//	PRESENT_REF       now
package timex

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type is one of the categories a TIMEX value can belong to.
type Type string

const (
	Present       Type = "present"
	Definite      Type = "definite"
	Date          Type = "date"
	DateRange     Type = "daterange"
	Duration      Type = "duration"
	Time          Type = "time"
	TimeRange     Type = "timerange"
	DateTime      Type = "datetime"
	DateTimeRange Type = "datetimerange"
)

// Property is a parsed TIMEX value. Unset components are nil.
type Property struct {
	Year       *int
	Month      *int
	DayOfMonth *int
	// DayOfWeek is 1 (Monday) through 7 (Sunday).
	DayOfWeek  *int
	WeekOfYear *int

	Hour   *int
	Minute *int
	Second *int

	Years   *float64
	Months  *float64
	Weeks   *float64
	Days    *float64
	Hours   *float64
	Minutes *float64
	Seconds *float64

	// PartOfDay is MO, AF, EV, NI or DT.
	PartOfDay string
	Now       bool

	Start *Property
	End   *Property
	Span  *Property
}

var (
	reDate      = regexp.MustCompile(`^(\d{4}|XXXX)-(\d{2}|XX)-(\d{2}|XX)$`)
	reWeekday   = regexp.MustCompile(`^(\d{4}|XXXX)-W(\d{2}|XX)-([1-7])$`)
	reWeek      = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
	reYearMonth = regexp.MustCompile(`^(\d{4}|XXXX)-(\d{2})$`)
	reYear      = regexp.MustCompile(`^(\d{4})$`)
	reTime      = regexp.MustCompile(`^(\d{2})(?::(\d{2}))?(?::(\d{2}))?$`)
	reDuration  = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)Y)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)W)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
)

var partsOfDay = map[string]bool{"MO": true, "AF": true, "EV": true, "NI": true, "DT": true}

func intPtr(v int) *int { return &v }

func atoiPtr(s string) *int {
	if s == "" || strings.HasPrefix(s, "X") {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func floatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Parse reads a TIMEX string.
func Parse(s string) (*Property, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty timex")
	case s == "PRESENT_REF":
		return &Property{Now: true}, nil
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		return parseRange(s[1 : len(s)-1])
	case strings.HasPrefix(s, "P"):
		return parseDuration(s)
	}

	p := &Property{}
	datePart, timePart, hasTime := strings.Cut(s, "T")
	if datePart != "" {
		if err := p.parseDate(datePart); err != nil {
			return nil, fmt.Errorf("%q is not a valid timex: %w", s, err)
		}
	}
	if hasTime {
		if err := p.parseTime(timePart); err != nil {
			return nil, fmt.Errorf("%q is not a valid timex: %w", s, err)
		}
	}
	return p, nil
}

func parseRange(inner string) (*Property, error) {
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("range %q must have start, end and duration", inner)
	}
	start, err := Parse(parts[0])
	if err != nil {
		return nil, err
	}
	end, err := Parse(parts[1])
	if err != nil {
		return nil, err
	}
	span, err := parseDuration(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, err
	}
	return &Property{Start: start, End: end, Span: span}, nil
}

func parseDuration(s string) (*Property, error) {
	m := reDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return nil, fmt.Errorf("%q is not a valid duration", s)
	}
	return &Property{
		Years:   floatPtr(m[1]),
		Months:  floatPtr(m[2]),
		Weeks:   floatPtr(m[3]),
		Days:    floatPtr(m[4]),
		Hours:   floatPtr(m[5]),
		Minutes: floatPtr(m[6]),
		Seconds: floatPtr(m[7]),
	}, nil
}

func (p *Property) parseDate(s string) error {
	if m := reDate.FindStringSubmatch(s); m != nil {
		p.Year, p.Month, p.DayOfMonth = atoiPtr(m[1]), atoiPtr(m[2]), atoiPtr(m[3])
		return nil
	}
	if m := reWeekday.FindStringSubmatch(s); m != nil {
		p.Year, p.WeekOfYear, p.DayOfWeek = atoiPtr(m[1]), atoiPtr(m[2]), atoiPtr(m[3])
		return nil
	}
	if m := reWeek.FindStringSubmatch(s); m != nil {
		p.Year, p.WeekOfYear = atoiPtr(m[1]), atoiPtr(m[2])
		return nil
	}
	if m := reYearMonth.FindStringSubmatch(s); m != nil {
		p.Year, p.Month = atoiPtr(m[1]), atoiPtr(m[2])
		return nil
	}
	if m := reYear.FindStringSubmatch(s); m != nil {
		p.Year = atoiPtr(m[1])
		return nil
	}
	return fmt.Errorf("unrecognized date %q", s)
}

func (p *Property) parseTime(s string) error {
	if partsOfDay[s] {
		p.PartOfDay = s
		return nil
	}
	m := reTime.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("unrecognized time %q", s)
	}
	p.Hour, p.Minute, p.Second = atoiPtr(m[1]), atoiPtr(m[2]), atoiPtr(m[3])
	if *p.Hour > 24 || (p.Minute != nil && *p.Minute > 59) || (p.Second != nil && *p.Second > 59) {
		return fmt.Errorf("time %q out of range", s)
	}
	return nil
}

// FromDate returns the definite date of t.
func FromDate(t time.Time) *Property {
	return &Property{Year: intPtr(t.Year()), Month: intPtr(int(t.Month())), DayOfMonth: intPtr(t.Day())}
}

// FromDateTime returns the definite date time of t, to the second.
func FromDateTime(t time.Time) *Property {
	p := FromDate(t)
	p.Hour, p.Minute, p.Second = intPtr(t.Hour()), intPtr(t.Minute()), intPtr(t.Second())
	return p
}

func (p *Property) hasDuration() bool {
	return p.Years != nil || p.Months != nil || p.Weeks != nil || p.Days != nil ||
		p.Hours != nil || p.Minutes != nil || p.Seconds != nil
}

func (p *Property) hasDate() bool {
	return (p.Month != nil && p.DayOfMonth != nil) || p.DayOfWeek != nil
}

func (p *Property) hasDateRange() bool {
	if p.DayOfMonth != nil || p.DayOfWeek != nil {
		return false
	}
	return p.Year != nil || p.Month != nil || p.WeekOfYear != nil
}

// Types infers every category p belongs to.
func (p *Property) Types() map[Type]bool {
	types := map[Type]bool{}
	if p.Now {
		for _, t := range []Type{Present, Definite, Date, Time, DateTime} {
			types[t] = true
		}
		return types
	}
	if p.Start != nil && p.End != nil {
		st, et := p.Start.Types(), p.End.Types()
		dates := (st[Date] || st[Present]) && (et[Date] || et[Present])
		times := (st[Time] || st[Present]) && (et[Time] || et[Present])
		switch {
		case dates && times:
			types[DateTimeRange] = true
		case dates:
			types[DateRange] = true
		case times:
			types[TimeRange] = true
		}
		return types
	}
	if p.hasDuration() {
		types[Duration] = true
	}
	if p.hasDate() {
		types[Date] = true
	}
	if p.hasDateRange() {
		types[DateRange] = true
	}
	if p.Year != nil && p.Month != nil && p.DayOfMonth != nil {
		types[Definite] = true
	}
	if p.Hour != nil {
		types[Time] = true
	}
	if p.PartOfDay != "" {
		types[TimeRange] = true
	}
	if types[Date] && types[Time] {
		types[DateTime] = true
	}
	if types[Date] && types[TimeRange] {
		types[DateTimeRange] = true
	}
	return types
}

// Is reports whether p belongs to t.
func (p *Property) Is(t Type) bool {
	return p.Types()[t]
}

// TypeNames returns the sorted category names of p.
func (p *Property) TypeNames() []string {
	var names []string
	for t := range p.Types() {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

func pad2(v *int) string {
	if v == nil {
		return "XX"
	}
	return fmt.Sprintf("%02d", *v)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String renders p back to TIMEX notation.
func (p *Property) String() string {
	if p.Now {
		return "PRESENT_REF"
	}
	if p.Start != nil && p.End != nil {
		span := ""
		if p.Span != nil {
			span = p.Span.String()
		}
		return "(" + p.Start.String() + "," + p.End.String() + "," + span + ")"
	}

	var sb strings.Builder
	if p.hasDuration() {
		sb.WriteByte('P')
		for _, c := range []struct {
			v    *float64
			unit string
		}{{p.Years, "Y"}, {p.Months, "M"}, {p.Weeks, "W"}, {p.Days, "D"}} {
			if c.v != nil {
				sb.WriteString(formatNumber(*c.v) + c.unit)
			}
		}
		if p.Hours != nil || p.Minutes != nil || p.Seconds != nil {
			sb.WriteByte('T')
			for _, c := range []struct {
				v    *float64
				unit string
			}{{p.Hours, "H"}, {p.Minutes, "M"}, {p.Seconds, "S"}} {
				if c.v != nil {
					sb.WriteString(formatNumber(*c.v) + c.unit)
				}
			}
		}
		return sb.String()
	}

	year := "XXXX"
	if p.Year != nil {
		year = fmt.Sprintf("%04d", *p.Year)
	}
	switch {
	case p.DayOfWeek != nil:
		sb.WriteString(year + "-W" + pad2(p.WeekOfYear) + "-" + strconv.Itoa(*p.DayOfWeek))
	case p.DayOfMonth != nil:
		sb.WriteString(year + "-" + pad2(p.Month) + "-" + pad2(p.DayOfMonth))
	case p.WeekOfYear != nil:
		sb.WriteString(year + "-W" + pad2(p.WeekOfYear))
	case p.Month != nil:
		sb.WriteString(year + "-" + pad2(p.Month))
	case p.Year != nil:
		sb.WriteString(year)
	}

	switch {
	case p.PartOfDay != "":
		sb.WriteString("T" + p.PartOfDay)
	case p.Hour != nil:
		sb.WriteString("T" + pad2(p.Hour))
		if p.Minute != nil {
			sb.WriteString(":" + pad2(p.Minute))
			if p.Second != nil {
				sb.WriteString(":" + pad2(p.Second))
			}
		}
	}
	return sb.String()
}
