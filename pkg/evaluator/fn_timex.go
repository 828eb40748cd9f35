package evaluator

import (
	"fmt"
	"time"

	"github.com/sandrolain/goexpr/pkg/timex"
	"github.com/sandrolain/goexpr/pkg/types"
)

// timexArg accepts a TIMEX string or an already parsed *timex.Property.
func timexArg(v any) (*timex.Property, error) {
	switch t := v.(type) {
	case *timex.Property:
		return t, nil
	case string:
		return timex.Parse(t)
	case nil:
		return nil, errNoTimex
	}
	return nil, fmt.Errorf("%s is not a valid timex: %w", describe(v), errNoTimex)
}

// timexIs builds the isX predicates. An unparseable string is simply not
// of that type.
func timexIs(t timex.Type) types.EvaluateFunc {
	return ApplyWithError(func(args []any) (any, error) {
		if _, ok := args[0].(string); ok {
			p, err := timex.Parse(args[0].(string))
			if err != nil {
				return false, nil
			}
			return p.Is(t), nil
		}
		if ts, ok := args[0].(time.Time); ok {
			return timex.FromDateTime(ts).Is(t), nil
		}
		p, err := timexArg(args[0])
		if err != nil {
			return nil, err
		}
		return p.Is(t), nil
	}, VerifyNotNull)
}

var (
	evalIsDefinite  = timexIs(timex.Definite)
	evalIsTime      = timexIs(timex.Time)
	evalIsDuration  = timexIs(timex.Duration)
	evalIsDate      = timexIs(timex.Date)
	evalIsTimeRange = timexIs(timex.TimeRange)
	evalIsDateRange = timexIs(timex.DateRange)
	evalIsPresent   = timexIs(timex.Present)
)

// evalValidateTimex reports whether a TIMEX parses and belongs to every
// listed type.
var evalValidateTimex = ApplyWithError(func(args []any) (any, error) {
	s, ok := args[0].(string)
	if !ok {
		return false, nil
	}
	p, err := timex.Parse(s)
	if err != nil {
		return false, nil
	}
	for _, c := range args[1:] {
		name, ok := c.(string)
		if !ok {
			return nil, fmt.Errorf("%s is not a timex type name", describe(c))
		}
		if !p.Is(timex.Type(name)) {
			return false, nil
		}
	}
	return true, nil
}, nil)

var evalResolve = ApplyWithError(func(args []any) (any, error) {
	p, err := timexArg(args[0])
	if err != nil {
		return nil, err
	}
	v, err := p.Resolve()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return v, nil
}, VerifyNotNull)

// referenceTime returns the clock in the optional time zone argument.
func referenceTime(args []any, pos int, opts *types.Options) (time.Time, error) {
	now := clock(opts)
	if pos < len(args) && args[pos] != nil {
		loc, err := loadLocation(str(args[pos]))
		if err != nil {
			return time.Time{}, err
		}
		now = now.In(loc)
	}
	return now, nil
}

func viableDate(next bool) types.EvaluateFunc {
	return ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
		p, err := timexArg(args[0])
		if err != nil {
			return nil, err
		}
		ref, err := referenceTime(args, 1, opts)
		if err != nil {
			return nil, err
		}
		var d time.Time
		if next {
			d, err = p.NextDate(ref)
		} else {
			d, err = p.PreviousDate(ref)
		}
		if err != nil {
			return nil, err
		}
		return d.Format("2006-01-02"), nil
	}, VerifyNotNull)
}

func viableTime(next bool) types.EvaluateFunc {
	return ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
		p, err := timexArg(args[0])
		if err != nil {
			return nil, err
		}
		ref, err := referenceTime(args, 1, opts)
		if err != nil {
			return nil, err
		}
		var t time.Time
		if next {
			t, err = p.NextTime(ref)
		} else {
			t, err = p.PreviousTime(ref)
		}
		if err != nil {
			return nil, err
		}
		return t.Format("T15:04:05"), nil
	}, VerifyNotNull)
}

var (
	evalGetNextViableDate     = viableDate(true)
	evalGetPreviousViableDate = viableDate(false)
	evalGetNextViableTime     = viableTime(true)
	evalGetPreviousViableTime = viableTime(false)
)
