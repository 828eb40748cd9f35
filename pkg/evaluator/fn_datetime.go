package evaluator

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sandrolain/goexpr/pkg/timex"
	"github.com/sandrolain/goexpr/pkg/types"
)

// Timestamps travel as ISO 8601 strings. Inputs without a zone are UTC;
// outputs default to DefaultDateTimeFormat in UTC.

const (
	ticksPerSecond = int64(10_000_000)
	ticksPerMinute = 60 * ticksPerSecond
	ticksPerHour   = 60 * ticksPerMinute
	ticksPerDay    = 24 * ticksPerHour
	// unixEpochTicks is 1970-01-01T00:00:00Z in .NET ticks.
	unixEpochTicks = int64(621355968000000000)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseISOTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s is not a valid ISO format datetime", describe(s))
}

func timestampArg(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseISOTimestamp(t)
	}
	return time.Time{}, fmt.Errorf("%s is not a valid timestamp", describe(v))
}

// clock returns the evaluation's notion of now.
func clock(opts *types.Options) time.Time {
	if v, ok := opts.Property(types.PropertyNow); ok {
		if t, err := timestampArg(v); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// formatArg formats t with the optional format argument at pos.
func formatArg(t time.Time, args []any, pos int) (any, error) {
	format := DefaultDateTimeFormat
	if pos < len(args) && args[pos] != nil {
		s, ok := args[pos].(string)
		if !ok {
			return nil, fmt.Errorf("%s is not a valid format", describe(args[pos]))
		}
		format = s
	}
	return FormatDateTime(t, format)
}

func timeToTicks(t time.Time) int64 {
	return t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100 + unixEpochTicks
}

func ticksToTime(ticks int64) time.Time {
	unix := ticks - unixEpochTicks
	sec := unix / ticksPerSecond
	rem := unix % ticksPerSecond
	if rem < 0 {
		sec--
		rem += ticksPerSecond
	}
	return time.Unix(sec, rem*100).UTC()
}

// addUnit moves t by interval units; months and years use calendar math.
func addUnit(t time.Time, interval int64, unit string) (time.Time, error) {
	switch strings.TrimSuffix(strings.ToLower(unit), "s") {
	case "second":
		return t.Add(time.Duration(interval) * time.Second), nil
	case "minute":
		return t.Add(time.Duration(interval) * time.Minute), nil
	case "hour":
		return t.Add(time.Duration(interval) * time.Hour), nil
	case "day":
		return t.AddDate(0, 0, int(interval)), nil
	case "week":
		return t.AddDate(0, 0, 7*int(interval)), nil
	case "month":
		return addMonths(t, int(interval)), nil
	case "year":
		return addMonths(t, 12*int(interval)), nil
	}
	return time.Time{}, fmt.Errorf("%s is not a valid time unit", describe(unit))
}

// addMonths moves t by n calendar months, clamping the day to the end of
// the target month: Jan 31 + 1 month is Feb 29 in a leap year.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := min(t.Day(), daysIn(first.Year(), first.Month()))
	return first.AddDate(0, 0, day-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func intArg(v any) (int64, error) {
	n, ok := ToInt64(v)
	if !ok || !IsNumber(v) {
		return 0, fmt.Errorf("%s is not an integer", describe(v))
	}
	return n, nil
}

func addFixed(unit string) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		t, err := timestampArg(args[0])
		if err != nil {
			return nil, err
		}
		n, err := intArg(args[1])
		if err != nil {
			return nil, err
		}
		moved, err := addUnit(t.UTC(), n, unit)
		if err != nil {
			return nil, err
		}
		return formatArg(moved, args, 2)
	}, nil)
}

var (
	evalAddDays    = addFixed("day")
	evalAddHours   = addFixed("hour")
	evalAddMinutes = addFixed("minute")
	evalAddSeconds = addFixed("second")
)

func shiftTime(sign int64) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		t, err := timestampArg(args[0])
		if err != nil {
			return nil, err
		}
		n, err := intArg(args[1])
		if err != nil {
			return nil, err
		}
		moved, err := addUnit(t.UTC(), sign*n, str(args[2]))
		if err != nil {
			return nil, err
		}
		return formatArg(moved, args, 3)
	}, nil)
}

var (
	evalAddToTime        = shiftTime(1)
	evalSubtractFromTime = shiftTime(-1)
)

func relativeTime(sign int64) types.EvaluateFunc {
	return ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
		n, err := intArg(args[0])
		if err != nil {
			return nil, err
		}
		moved, err := addUnit(clock(opts), sign*n, str(args[1]))
		if err != nil {
			return nil, err
		}
		return formatArg(moved, args, 2)
	}, nil)
}

var (
	evalGetFutureTime = relativeTime(1)
	evalGetPastTime   = relativeTime(-1)
)

var evalUTCNow = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	return formatArg(clock(opts), args, 0)
}, nil)

func datePart(part func(t time.Time) any) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		t, err := timestampArg(args[0])
		if err != nil {
			return nil, err
		}
		return part(t.UTC()), nil
	}, nil)
}

var (
	evalDayOfMonth = datePart(func(t time.Time) any { return int64(t.Day()) })
	evalDayOfWeek  = datePart(func(t time.Time) any { return int64(t.Weekday()) })
	evalDayOfYear  = datePart(func(t time.Time) any { return int64(t.YearDay()) })
	evalMonth      = datePart(func(t time.Time) any { return int64(t.Month()) })
	evalYear       = datePart(func(t time.Time) any { return int64(t.Year()) })
	evalDate       = datePart(func(t time.Time) any {
		return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
	})
	evalTicks = datePart(func(t time.Time) any { return timeToTicks(t) })

	// evalGetTimeOfDay buckets the hour: midnight, morning, noon,
	// afternoon, evening, night.
	evalGetTimeOfDay = datePart(func(t time.Time) any {
		minutes := t.Hour()*60 + t.Minute()
		switch {
		case minutes == 0:
			return "midnight"
		case minutes < 12*60:
			return "morning"
		case minutes == 12*60:
			return "noon"
		case minutes < 18*60:
			return "afternoon"
		case minutes < 22*60:
			return "evening"
		}
		return "night"
	})
)

// evalFormatDateTime accepts ISO strings and also any layout Go can
// recognize from the ISO family; the locale argument is accepted for
// compatibility but names stay English.
var evalFormatDateTime = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	t, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	if _, err := localeArg(args, 2, opts); err != nil {
		return nil, err
	}
	return formatArg(t.UTC(), args, 1)
}, nil)

var evalFormatEpoch = ApplyWithError(func(args []any) (any, error) {
	f, ok := ToFloat64(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a number", describe(args[0]))
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return formatArg(time.Unix(sec, nsec).UTC(), args, 1)
}, nil)

var evalFormatTicks = ApplyWithError(func(args []any) (any, error) {
	n, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	return formatArg(ticksToTime(n), args, 1)
}, nil)

func ticksTo(unit int64) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		n, err := intArg(args[0])
		if err != nil {
			return nil, err
		}
		return float64(n) / float64(unit), nil
	}, nil)
}

var (
	evalTicksToDays    = ticksTo(ticksPerDay)
	evalTicksToHours   = ticksTo(ticksPerHour)
	evalTicksToMinutes = ticksTo(ticksPerMinute)
)

var evalDateTimeDiff = ApplyWithError(func(args []any) (any, error) {
	a, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	b, err := timestampArg(args[1])
	if err != nil {
		return nil, err
	}
	return timeToTicks(a) - timeToTicks(b), nil
}, nil)

func truncateTo(trunc func(t time.Time) time.Time) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		t, err := timestampArg(args[0])
		if err != nil {
			return nil, err
		}
		return formatArg(trunc(t.UTC()), args, 1)
	}, nil)
}

var (
	evalStartOfDay = truncateTo(func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	})
	evalStartOfHour = truncateTo(func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	})
	evalStartOfMonth = truncateTo(func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	})
)

// windowsZones maps common Windows time zone names to IANA names.
var windowsZones = map[string]string{
	"UTC":                            "UTC",
	"GMT Standard Time":              "Europe/London",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Romance Standard Time":          "Europe/Paris",
	"Central Europe Standard Time":   "Europe/Budapest",
	"E. Europe Standard Time":        "Europe/Chisinau",
	"Russian Standard Time":          "Europe/Moscow",
	"India Standard Time":            "Asia/Kolkata",
	"China Standard Time":            "Asia/Shanghai",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"Eastern Standard Time":          "America/New_York",
	"Central Standard Time":          "America/Chicago",
	"Mountain Standard Time":         "America/Denver",
	"US Mountain Standard Time":      "America/Phoenix",
	"Pacific Standard Time":          "America/Los_Angeles",
	"Alaskan Standard Time":          "America/Anchorage",
	"Hawaiian Standard Time":         "Pacific/Honolulu",
	"SA Pacific Standard Time":       "America/Bogota",
	"E. South America Standard Time": "America/Sao_Paulo",
}

func loadLocation(name string) (*time.Location, error) {
	if iana, ok := windowsZones[name]; ok {
		name = iana
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid timezone: %w", describe(name), err)
	}
	return loc, nil
}

const convertedFormat = "yyyy-MM-ddTHH:mm:ss.fffffff"

var evalConvertFromUTC = ApplyWithError(func(args []any) (any, error) {
	t, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	loc, err := loadLocation(str(args[1]))
	if err != nil {
		return nil, err
	}
	format := convertedFormat
	if len(args) > 2 {
		format = str(args[2])
	}
	return FormatDateTime(t.In(loc), format)
}, nil)

var evalConvertToUTC = ApplyWithError(func(args []any) (any, error) {
	t, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	loc, err := loadLocation(str(args[1]))
	if err != nil {
		return nil, err
	}
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	return formatArg(local.UTC(), args, 2)
}, nil)

// evalDateReadBack describes target relative to current, e.g. "tomorrow".
var evalDateReadBack = ApplyWithError(func(args []any) (any, error) {
	current, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	target, err := timestampArg(args[1])
	if err != nil {
		return nil, err
	}
	return timex.FromDate(target.UTC()).RelativeString(current.UTC()), nil
}, nil)

var errNoTimex = errors.New("timex value must be a string")
