package evaluator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goexpr/pkg/evaluator"
	"github.com/sandrolain/goexpr/pkg/types"
)

func TestDateTimeFunctions(t *testing.T) {
	const ts = "'2020-05-15T14:05:09.123Z'"
	runCases(t, []evalCase{
		{"utcNow()", "2020-05-15T10:30:00.000Z"},
		{"utcNow('yyyy-MM-dd')", "2020-05-15"},
		{"addDays('2020-05-15T10:30:00.000Z', 1)", "2020-05-16T10:30:00.000Z"},
		{"addDays('2020-05-15', -15, 'yyyy-MM-dd')", "2020-04-30"},
		{"addHours('2020-05-15T10:30:00Z', -2, 'HH:mm')", "08:30"},
		{"addMinutes('2020-05-15T10:30:00Z', 45, 'HH:mm')", "11:15"},
		{"addSeconds('2020-05-15T10:30:00Z', 90, 'HH:mm:ss')", "10:31:30"},
		{"addToTime('2020-01-31T00:00:00Z', 1, 'month', 'yyyy-MM-dd')", "2020-02-29"},
		{"addToTime('2020-01-31T00:00:00Z', 1, 'Month')", "2020-02-29T00:00:00.000Z"},
		{"addToTime('2021-01-31T08:15:00Z', 3, 'month', 'yyyy-MM-dd HH:mm')", "2021-04-30 08:15"},
		{"addToTime('2020-10-31T00:00:00Z', 4, 'month', 'yyyy-MM-dd')", "2021-02-28"},
		{"addToTime('2020-02-29T00:00:00Z', 1, 'year', 'yyyy-MM-dd')", "2021-02-28"},
		{"addToTime('2020-05-15T00:00:00Z', 1, 'month', 'yyyy-MM-dd')", "2020-06-15"},
		{"subtractFromTime('2020-03-31T00:00:00Z', 1, 'Month')", "2020-02-29T00:00:00.000Z"},
		{"subtractFromTime('2021-03-31T00:00:00Z', 13, 'month', 'yyyy-MM-dd')", "2020-02-29"},
		{"subtractFromTime('2024-02-29T00:00:00Z', 4, 'year', 'yyyy-MM-dd')", "2020-02-29"},
		{"addToTime('2020-05-15T00:00:00Z', 2, 'Weeks', 'yyyy-MM-dd')", "2020-05-29"},
		{"subtractFromTime('2020-05-15T00:00:00Z', 1, 'week', 'yyyy-MM-dd')", "2020-05-08"},
		{"subtractFromTime('2020-05-15T00:00:00Z', 1, 'year', 'yyyy')", "2019"},
		{"getFutureTime(2, 'day', 'yyyy-MM-dd')", "2020-05-17"},
		{"getPastTime(1, 'year', 'yyyy')", "2019"},
		{"getPastTime(30, 'minute', 'HH:mm')", "10:00"},
		{"dayOfMonth(" + ts + ")", int64(15)},
		{"dayOfWeek(" + ts + ")", int64(5)},
		{"dayOfYear(" + ts + ")", int64(136)},
		{"month(" + ts + ")", int64(5)},
		{"year(" + ts + ")", int64(2020)},
		{"date(" + ts + ")", "5/15/2020"},
		{"ticks('0001-01-01T00:00:00Z')", int64(0)},
		{"ticks('1970-01-01T00:00:00Z')", int64(621355968000000000)},
		{"getTimeOfDay('2020-05-15T00:00:00Z')", "midnight"},
		{"getTimeOfDay('2020-05-15T09:00:00Z')", "morning"},
		{"getTimeOfDay('2020-05-15T12:00:00Z')", "noon"},
		{"getTimeOfDay('2020-05-15T15:00:00Z')", "afternoon"},
		{"getTimeOfDay('2020-05-15T19:00:00Z')", "evening"},
		{"getTimeOfDay('2020-05-15T23:00:00Z')", "night"},
		{"formatDateTime(" + ts + ", 'dddd, MMMM d, yyyy h:mm:ss tt')", "Friday, May 15, 2020 2:05:09 PM"},
		{"formatDateTime(" + ts + ", 'ddd dd MMM yy')", "Fri 15 May 20"},
		{"formatDateTime(" + ts + ")", "2020-05-15T14:05:09.123Z"},
		{"formatDateTime(" + ts + ", 'd')", "5/15/2020"},
		{"formatDateTime(" + ts + ", 's')", "2020-05-15T14:05:09"},
		{"formatDateTime(" + ts + ", 'HH:mm \\'at\\' yyyy')", "14:05 at 2020"},
		{"formatDateTime(" + ts + ", 'ss.FFF')", "09.123"},
		{"formatEpoch(0, 'yyyy-MM-dd')", "1970-01-01"},
		{"formatEpoch(86400)", "1970-01-02T00:00:00.000Z"},
		{"formatTicks(621355968000000000, 'yyyy')", "1970"},
		{"ticksToDays(864000000000)", 1.0},
		{"ticksToHours(36000000000)", 1.0},
		{"ticksToMinutes(600000000)", 1.0},
		{"dateTimeDiff('2020-05-16T00:00:00Z', '2020-05-15T00:00:00Z')", int64(864000000000)},
		{"startOfDay('2020-05-15T14:05:09Z')", "2020-05-15T00:00:00.000Z"},
		{"startOfHour('2020-05-15T14:05:09Z')", "2020-05-15T14:00:00.000Z"},
		{"startOfMonth('2020-05-15T14:05:09Z')", "2020-05-01T00:00:00.000Z"},
		{"startOfDay('2020-05-15T14:05:09Z', 'yyyy-MM-dd HH:mm')", "2020-05-15 00:00"},
		{"convertFromUTC('2020-05-15T12:00:00Z', 'Pacific Standard Time', 'yyyy-MM-dd HH:mm')", "2020-05-15 05:00"},
		{"convertFromUTC('2020-01-15T12:00:00Z', 'Europe/Rome', 'HH:mm')", "13:00"},
		{"convertToUTC('2020-05-15T05:00:00', 'America/Los_Angeles', 'HH:mm')", "12:00"},
		{"dateReadBack('2020-05-15T00:00:00Z', '2020-05-16T00:00:00Z')", "tomorrow"},
		{"dateReadBack('2020-05-15T00:00:00Z', '2020-05-14T00:00:00Z')", "yesterday"},
	}, fixedClock())

	runErrorCases(t, []string{
		"addDays('not a date', 1)",
		"addToTime('2020-05-15', 1, 'fortnight')",
		"convertFromUTC('2020-05-15T12:00:00Z', 'Mars/Olympus')",
		"formatDateTime('2020-05-15', 'x')",
		"formatDateTime('2020-05-15', 'ffffffff')",
		"formatDateTime('2020-05-15', 'HH \\'open')",
	}, fixedClock())
}

func TestClockFollowsNowProperty(t *testing.T) {
	opts := fixedClock()
	opts.Properties["now"] = time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := evalWith(t, "utcNow('yyyy-MM-dd HH:mm:ss')", nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-02 03:04:05", got)

	before := time.Now().UTC().Add(-time.Minute)
	got, err = evalWith(t, "utcNow()", nil, nil)
	require.NoError(t, err)
	now, err := time.Parse(time.RFC3339, got.(string))
	require.NoError(t, err)
	assert.True(t, now.After(before))
}

func TestRelativeTimeClampsMonthEnd(t *testing.T) {
	tests := []struct {
		now  string
		expr string
		want string
	}{
		{"2020-01-31T12:00:00Z", "getFutureTime(1, 'month', 'yyyy-MM-dd')", "2020-02-29"},
		{"2020-03-31T12:00:00Z", "getPastTime(1, 'month', 'yyyy-MM-dd')", "2020-02-29"},
		{"2020-02-29T12:00:00Z", "getFutureTime(1, 'year', 'yyyy-MM-dd')", "2021-02-28"},
		{"2020-08-31T12:00:00Z", "getPastTime(2, 'months', 'yyyy-MM-dd')", "2020-06-30"},
	}
	for _, tt := range tests {
		t.Run(tt.now+" "+tt.expr, func(t *testing.T) {
			opts := types.NewOptions()
			opts.Properties[types.PropertyNow] = tt.now
			got, err := evalWith(t, tt.expr, nil, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDateTimeDirect(t *testing.T) {
	ts := time.Date(2020, 5, 15, 14, 5, 9, 0, time.FixedZone("CEST", 2*3600))
	got, err := evaluator.FormatDateTime(ts, "yyyy-MM-ddTHH:mm:sszzz")
	require.NoError(t, err)
	assert.Equal(t, "2020-05-15T14:05:09+02:00", got)

	got, err = evaluator.FormatDateTime(ts, "o")
	require.NoError(t, err)
	assert.Equal(t, "2020-05-15T14:05:09.0000000+02:00", got)

	got, err = evaluator.FormatDateTime(ts.UTC(), "K")
	require.NoError(t, err)
	assert.Equal(t, "Z", got)

	got, err = evaluator.FormatDateTime(ts, "r")
	require.NoError(t, err)
	assert.Equal(t, "Fri, 15 May 2020 12:05:09 GMT", got)
}

func TestTimexFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{"isDefinite('2020-05-15')", true},
		{"isDefinite('XXXX-05-15')", false},
		{"isDefinite('garbage')", false},
		{"isDate('XXXX-05-15')", true},
		{"isTime('T10')", true},
		{"isDuration('P2D')", true},
		{"isDuration('2020-05-15')", false},
		{"isTimeRange('TEV')", true},
		{"isDateRange('2020')", true},
		{"isPresent('PRESENT_REF')", true},
		{"validateTimex('2020-05-15', 'definite', 'date')", true},
		{"validateTimex('XXXX-05-15', 'definite')", false},
		{"validateTimex('nonsense')", false},
		{"resolve('T14:30')", "14:30:00"},
		{"resolve('2020-05-15')", "2020-05-15"},
		{"resolve('2020-05-15T14:30:05')", "2020-05-15 14:30:05"},
		{"getNextViableDate('XXXX-WXX-3')", "2020-05-20"},
		{"getPreviousViableDate('XXXX-WXX-3')", "2020-05-13"},
		{"getNextViableDate('XXXX-12-25')", "2020-12-25"},
		{"getPreviousViableDate('XXXX-05-15')", "2020-05-15"},
		{"getNextViableTime('T09:00')", "T09:00:00"},
		{"getPreviousViableTime('T09:00')", "T09:00:00"},
		{"getNextViableTime('T12')", "T12:00:00"},
	}, fixedClock())

	runErrorCases(t, []string{
		"resolve('P2D')",
		"resolve('garbage')",
		"getNextViableDate('P2D')",
		"getNextViableDate('XXXX-05-15', 'Nowhere/City')",
	}, fixedClock())
}
