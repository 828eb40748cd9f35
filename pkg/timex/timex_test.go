package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypes(t *testing.T) {
	tests := []struct {
		timex string
		is    []Type
		isNot []Type
	}{
		{"2020-05-15", []Type{Definite, Date}, []Type{Time, Duration}},
		{"XXXX-05-15", []Type{Date}, []Type{Definite}},
		{"XXXX-WXX-3", []Type{Date}, []Type{Definite, DateRange}},
		{"T14:30", []Type{Time}, []Type{Date}},
		{"2020-05-15T14:30", []Type{Definite, Date, Time, DateTime}, nil},
		{"P2D", []Type{Duration}, []Type{Date}},
		{"PT30M", []Type{Duration}, nil},
		{"(2020-05-01,2020-05-08,P7D)", []Type{DateRange}, []Type{Date}},
		{"(T09,T17,PT8H)", []Type{TimeRange}, nil},
		{"TMO", []Type{TimeRange}, []Type{Time}},
		{"2020", []Type{DateRange}, []Type{Date}},
		{"2020-W20", []Type{DateRange}, nil},
		{"PRESENT_REF", []Type{Present, Definite, Date, Time}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.timex, func(t *testing.T) {
			p, err := Parse(tt.timex)
			require.NoError(t, err)
			for _, typ := range tt.is {
				assert.True(t, p.Is(typ), "expected %s", typ)
			}
			for _, typ := range tt.isNot {
				assert.False(t, p.Is(typ), "unexpected %s", typ)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{"", "bogus", "2020-5-1", "T25", "P", "(2020-05-01,P7D)"} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{
		"2020-05-15",
		"XXXX-WXX-3",
		"XXXX-05-15",
		"2020-05-15T14:30",
		"T14:30:15",
		"P2DT3H",
		"PT0.5H",
		"TEV",
		"(2020-05-01,2020-05-08,P7D)",
		"PRESENT_REF",
	} {
		p, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, p.String())
	}
}

func TestTypeNames(t *testing.T) {
	p, err := Parse("2020-05-15T14:30")
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "datetime", "definite", "time"}, p.TypeNames())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		timex string
		want  string
	}{
		{"2020-05-15", "2020-05-15"},
		{"T14:30", "14:30:00"},
		{"2020-05-15T14:30:05", "2020-05-15 14:30:05"},
	}
	for _, tt := range tests {
		p, err := Parse(tt.timex)
		require.NoError(t, err)
		got, err := p.Resolve()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, s := range []string{"XXXX-05-15", "P2D", "PRESENT_REF"} {
		p, err := Parse(s)
		require.NoError(t, err)
		_, err = p.Resolve()
		assert.ErrorIs(t, err, ErrNotResolvable, s)
	}
}

func TestViableDate(t *testing.T) {
	// Friday.
	ref := time.Date(2020, 5, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		timex    string
		next     string
		previous string
	}{
		{"XXXX-WXX-3", "2020-05-20", "2020-05-13"},
		{"XXXX-WXX-5", "2020-05-15", "2020-05-15"},
		{"XXXX-05-15", "2020-05-15", "2020-05-15"},
		{"XXXX-12-25", "2020-12-25", "2019-12-25"},
		{"XXXX-02-29", "2024-02-29", "2020-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.timex, func(t *testing.T) {
			p, err := Parse(tt.timex)
			require.NoError(t, err)

			next, err := p.NextDate(ref)
			require.NoError(t, err)
			assert.Equal(t, tt.next, next.Format("2006-01-02"))

			prev, err := p.PreviousDate(ref)
			require.NoError(t, err)
			assert.Equal(t, tt.previous, prev.Format("2006-01-02"))
		})
	}

	p, err := Parse("P2D")
	require.NoError(t, err)
	_, err = p.NextDate(ref)
	assert.Error(t, err)
}

func TestViableTime(t *testing.T) {
	ref := time.Date(2020, 5, 15, 15, 0, 0, 0, time.UTC)
	p, err := Parse("T14:30")
	require.NoError(t, err)

	next, err := p.NextTime(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 5, 16, 14, 30, 0, 0, time.UTC), next)

	prev, err := p.PreviousTime(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 5, 15, 14, 30, 0, 0, time.UTC), prev)

	exact, err := Parse("T15")
	require.NoError(t, err)
	same, err := exact.NextTime(ref)
	require.NoError(t, err)
	assert.Equal(t, ref, same)
}

func TestRelativeString(t *testing.T) {
	ref := time.Date(2020, 5, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		target time.Time
		want   string
	}{
		{time.Date(2020, 5, 15, 0, 0, 0, 0, time.UTC), "today"},
		{time.Date(2020, 5, 16, 0, 0, 0, 0, time.UTC), "tomorrow"},
		{time.Date(2020, 5, 14, 0, 0, 0, 0, time.UTC), "yesterday"},
		{time.Date(2020, 5, 12, 0, 0, 0, 0, time.UTC), "this Tuesday"},
		{time.Date(2020, 5, 20, 0, 0, 0, 0, time.UTC), "next Wednesday"},
		{time.Date(2020, 5, 6, 0, 0, 0, 0, time.UTC), "last Wednesday"},
		{time.Date(2020, 6, 20, 0, 0, 0, 0, time.UTC), "20th June 2020"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromDate(tt.target).RelativeString(ref))
	}
}
