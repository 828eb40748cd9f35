package evaluator

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sandrolain/goexpr/pkg/types"
)

// localeArg resolves the locale for a locale-sensitive function: the
// argument at pos when present, the options locale otherwise. An empty
// locale means culture invariant (language.Und).
func localeArg(args []any, pos int, opts *types.Options) (language.Tag, error) {
	if pos < len(args) && args[pos] != nil {
		s, ok := args[pos].(string)
		if !ok {
			return language.Und, fmt.Errorf("%s is not a valid locale", describe(args[pos]))
		}
		return parseLocale(s)
	}
	if opts == nil || opts.Locale == "" {
		return language.Und, nil
	}
	tag, err := parseLocale(opts.Locale)
	if err != nil {
		return language.Und, nil
	}
	return tag, nil
}

func parseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("%s is not a valid locale: %w", s, err)
	}
	return tag, nil
}

func toLowerLocale(s string, tag language.Tag) string {
	return cases.Lower(tag).String(s)
}

func toUpperLocale(s string, tag language.Tag) string {
	return cases.Upper(tag).String(s)
}

func titleCaseLocale(s string, tag language.Tag) string {
	return cases.Title(tag).String(s)
}

// sentenceCaseLocale lower-cases s and upper-cases its first letter.
func sentenceCaseLocale(s string, tag language.Tag) string {
	lower := cases.Lower(tag).String(s)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return cases.Upper(tag).String(string(r)) + lower[size:]
}

var decimalSeparators sync.Map // language.Tag -> string

// decimalSeparator returns the locale's decimal mark, found by formatting
// 1.5 and reading the character between the digits.
func decimalSeparator(tag language.Tag) string {
	if tag == language.Und {
		return "."
	}
	if v, ok := decimalSeparators.Load(tag); ok {
		return v.(string)
	}
	formatted := []rune(message.NewPrinter(tag).Sprint(number.Decimal(1.5, number.Scale(1))))
	sep := "."
	if len(formatted) >= 3 {
		sep = string(formatted[1])
	}
	decimalSeparators.Store(tag, sep)
	return sep
}

// formatNumberLocale renders f with exactly precision fractional digits
// using the locale's grouping and decimal marks.
func formatNumberLocale(f float64, precision int, tag language.Tag) string {
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag).Sprint(number.Decimal(f, number.Scale(precision)))
}

// stringLocale renders a value like Stringify, using the locale's decimal
// mark for floats.
func stringLocale(v any, tag language.Tag) string {
	s := Stringify(v)
	if _, isFloat := v.(float64); isFloat || isFloat32(v) {
		if sep := decimalSeparator(tag); sep != "." {
			s = strings.Replace(s, ".", sep, 1)
		}
	}
	return s
}

func isFloat32(v any) bool {
	_, ok := v.(float32)
	return ok
}
