package timex

import (
	"fmt"
	"time"
)

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Describe renders a definite date in words, e.g. "15th May 2020".
func (p *Property) Describe() string {
	d, ok := p.Date()
	if !ok {
		return p.String()
	}
	return fmt.Sprintf("%s %s %d", ordinal(d.Day()), d.Month(), d.Year())
}

// RelativeString describes a definite date relative to ref: "today",
// "tomorrow", "yesterday", "this/next/last <weekday>" within neighbouring
// weeks, or the full date otherwise.
func (p *Property) RelativeString(ref time.Time) string {
	target, ok := p.Date()
	if !ok {
		return p.String()
	}
	today := dateOf(ref)
	switch days := int(target.Sub(today).Hours() / 24); days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case -1:
		return "yesterday"
	}

	weekday := target.Weekday().String()
	switch weeks := int(weekStart(target).Sub(weekStart(today)).Hours() / (24 * 7)); weeks {
	case 0:
		return "this " + weekday
	case 1:
		return "next " + weekday
	case -1:
		return "last " + weekday
	}
	return p.Describe()
}
