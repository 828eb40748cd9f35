package evaluator

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sandrolain/goexpr/pkg/types"
)

// String functions treat a null string argument as "".

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return Stringify(v)
}

func concatPair(a, b any) any {
	la, aList := ToList(a)
	lb, bList := ToList(b)
	switch {
	case a == nil && b == nil:
		return ""
	case a == nil && bList:
		return lb
	case b == nil && aList:
		return la
	case aList && bList:
		out := make([]any, 0, len(la)+len(lb))
		out = append(out, la...)
		return append(out, lb...)
	}
	return Stringify(a) + Stringify(b)
}

var evalConcat = Apply(func(args []any) any {
	if len(args) == 1 {
		if IsList(args[0]) {
			return args[0]
		}
		return Stringify(args[0])
	}
	soFar := args[0]
	for _, next := range args[1:] {
		soFar = concatPair(soFar, next)
	}
	return soFar
}, nil)

var evalLength = Apply(func(args []any) any {
	return int64(utf8.RuneCountInString(str(args[0])))
}, VerifyStringOrNull)

var evalToLower = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	tag, err := localeArg(args, 1, opts)
	if err != nil {
		return nil, err
	}
	return toLowerLocale(str(args[0]), tag), nil
}, verifyFirstStringOrNull)

var evalToUpper = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	tag, err := localeArg(args, 1, opts)
	if err != nil {
		return nil, err
	}
	return toUpperLocale(str(args[0]), tag), nil
}, verifyFirstStringOrNull)

var evalSentenceCase = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	tag, err := localeArg(args, 1, opts)
	if err != nil {
		return nil, err
	}
	return sentenceCaseLocale(str(args[0]), tag), nil
}, verifyFirstStringOrNull)

var evalTitleCase = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	tag, err := localeArg(args, 1, opts)
	if err != nil {
		return nil, err
	}
	return titleCaseLocale(str(args[0]), tag), nil
}, verifyFirstStringOrNull)

// verifyFirstStringOrNull checks the subject argument and leaves the
// optional locale to localeArg.
func verifyFirstStringOrNull(value any, child *types.Expression, pos int) error {
	if pos == 0 {
		return VerifyStringOrNull(value, child, pos)
	}
	return nil
}

var evalTrim = Apply(func(args []any) any {
	return strings.TrimSpace(str(args[0]))
}, VerifyStringOrNull)

var evalSubstring = ApplyWithError(func(args []any) (any, error) {
	runes := []rune(str(args[0]))
	start, ok := ToInt64(args[1])
	if !ok || !IsInteger(args[1]) {
		return nil, reasonf("argument %s is not an integer", describe(args[1]))
	}
	if start < 0 || start > int64(len(runes)) {
		return nil, reasonf("start index %d is not in range 0 to %d", start, len(runes))
	}
	end := int64(len(runes))
	if len(args) > 2 {
		length, ok := ToInt64(args[2])
		if !ok || !IsInteger(args[2]) {
			return nil, reasonf("argument %s is not an integer", describe(args[2]))
		}
		if length < 0 || start+length > int64(len(runes)) {
			return nil, reasonf("length %d is not in range 0 to %d", length, int64(len(runes))-start)
		}
		end = start + length
	}
	return string(runes[start:end]), nil
}, nil)

var evalReplace = ApplyWithError(func(args []any) (any, error) {
	old := str(args[1])
	if old == "" {
		return nil, errors.New("second parameter of replace must be a non-empty string")
	}
	return strings.ReplaceAll(str(args[0]), old, str(args[2])), nil
}, VerifyStringOrNull)

var evalReplaceIgnoreCase = ApplyWithError(func(args []any) (any, error) {
	old := str(args[1])
	if old == "" {
		return nil, errors.New("second parameter of replaceIgnoreCase must be a non-empty string")
	}
	re, err := getOrCompileRegex("(?i)" + regexp.QuoteMeta(old))
	if err != nil {
		return nil, err
	}
	return re.ReplaceAllLiteralString(str(args[0]), str(args[2])), nil
}, VerifyStringOrNull)

var evalSplit = Apply(func(args []any) any {
	s := str(args[0])
	sep := ""
	if len(args) > 1 {
		sep = str(args[1])
	}
	if s == "" {
		return []any{}
	}
	parts := strings.Split(s, sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}, VerifyStringOrNull)

var evalStartsWith = Apply(func(args []any) any {
	return strings.HasPrefix(str(args[0]), str(args[1]))
}, VerifyStringOrNull)

var evalEndsWith = Apply(func(args []any) any {
	return strings.HasSuffix(str(args[0]), str(args[1]))
}, VerifyStringOrNull)

var evalCountWord = Apply(func(args []any) any {
	return int64(len(strings.Fields(str(args[0]))))
}, VerifyStringOrNull)

// ordinalSuffix returns the English suffix for n: 1st, 2nd, 3rd, 11th.
func ordinalSuffix(n int64) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

var evalAddOrdinal = Apply(func(args []any) any {
	n, _ := ToInt64(args[0])
	return fmt.Sprintf("%d%s", n, ordinalSuffix(n))
}, VerifyInteger)

func indexOfValue(args []any, last bool) (any, error) {
	if list, ok := ToList(args[0]); ok {
		if last {
			for i := len(list) - 1; i >= 0; i-- {
				if IsEqual(list[i], args[1]) {
					return int64(i), nil
				}
			}
			return int64(-1), nil
		}
		for i, item := range list {
			if IsEqual(item, args[1]) {
				return int64(i), nil
			}
		}
		return int64(-1), nil
	}
	if args[0] != nil {
		if _, ok := args[0].(string); !ok {
			return nil, fmt.Errorf("%s must be a string or a list", describe(args[0]))
		}
	}
	needle, ok := args[1].(string)
	if args[1] != nil && !ok {
		return nil, fmt.Errorf("%s must be a string", describe(args[1]))
	}
	s := str(args[0])
	var idx int
	if last {
		idx = strings.LastIndex(s, needle)
	} else {
		idx = strings.Index(s, needle)
	}
	if idx < 0 {
		return int64(-1), nil
	}
	return int64(utf8.RuneCountInString(s[:idx])), nil
}

var evalIndexOf = ApplyWithError(func(args []any) (any, error) {
	return indexOfValue(args, false)
}, nil)

var evalLastIndexOf = ApplyWithError(func(args []any) (any, error) {
	return indexOfValue(args, true)
}, nil)

var evalReverse = ApplyWithError(func(args []any) (any, error) {
	if list, ok := ToList(args[0]); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[len(list)-1-i] = item
		}
		return out, nil
	}
	if s, ok := args[0].(string); ok {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	}
	return nil, fmt.Errorf("%s is not a string or a list", describe(args[0]))
}, nil)

var evalNewGUID = ApplyWithOptionsAndError(func(_ []any, opts *types.Options) (any, error) {
	if _, ok := opts.Property(types.PropertyRandomSeed); ok {
		r, unlock := randomSource(opts)
		defer unlock()
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}, nil)

var evalEOL = Apply(func(_ []any) any {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}, nil)

var evalIsMatch = ApplyWithError(func(args []any) (any, error) {
	re, err := getOrCompileRegex(str(args[1]))
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid regular expression: %w", describe(args[1]), err)
	}
	return re.MatchString(str(args[0])), nil
}, VerifyStringOrNull)

// validateIsMatch compiles a literal pattern once at construction.
func validateIsMatch(expr *types.Expression) error {
	if err := ValidateArityAndAnyType(expr, 2, 2, types.ReturnString); err != nil {
		return err
	}
	if pattern := expr.Child(1); pattern.IsConstant() {
		if s, ok := pattern.Value().(string); ok {
			if _, err := getOrCompileRegex(s); err != nil {
				return types.Errorf(types.ErrInvalidRegex, "%s is not a valid regular expression: %v", pattern, err).WithCause(err)
			}
		}
	}
	return nil
}

var evalString = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	tag, err := localeArg(args, 1, opts)
	if err != nil {
		return nil, err
	}
	return stringLocale(args[0], tag), nil
}, nil)
