package evaluator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sandrolain/goexpr/pkg/types"
)

// evalBool converts numbers (non-zero), "true"/"false" strings and other
// values by truthiness.
var evalBool = Apply(func(args []any) any {
	switch v := args[0].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return true
	}
	if IsNumber(args[0]) {
		f, _ := ToFloat64(args[0])
		return f != 0
	}
	return IsLogicTrue(args[0])
}, nil)

// evalInt truncates floats toward zero and parses integer strings.
var evalInt = ApplyWithError(func(args []any) (any, error) {
	switch v := args[0].(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s must be an integer string", describe(v))
		}
		return n, nil
	}
	if IsInteger(args[0]) {
		n, _ := ToInt64(args[0])
		return n, nil
	}
	if f, ok := ToFloat64(args[0]); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s cannot be converted to an integer", describe(args[0]))
		}
		return int64(math.Trunc(f)), nil
	}
	return nil, fmt.Errorf("%s is not a number or a numeric string", describe(args[0]))
}, VerifyNotNull)

// evalFloat parses culture-invariant numeric strings.
var evalFloat = ApplyWithError(func(args []any) (any, error) {
	if s, ok := args[0].(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s is not a valid number string", describe(s))
		}
		return f, nil
	}
	f, ok := ToFloat64(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a number or a numeric string", describe(args[0]))
	}
	return f, nil
}, VerifyNotNull)

var evalJSON = ApplyWithError(func(args []any) (any, error) {
	s, ok := args[0].(string)
	if !ok {
		return args[0], nil
	}
	v, err := ParseJSON(s)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid JSON string: %w", describe(s), err)
	}
	return v, nil
}, VerifyNotNull)

var evalJSONStringify = ApplyWithError(func(args []any) (any, error) {
	return marshalJSON(args[0])
}, nil)

// bytesArg accepts a string (its UTF-8 bytes) or a byte slice.
func bytesArg(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return []byte{}, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	}
	if list, ok := ToList(v); ok {
		out := make([]byte, len(list))
		for i, item := range list {
			n, ok := ToInt64(item)
			if !ok || n < 0 || n > 255 {
				return nil, fmt.Errorf("%s is not a byte", describe(item))
			}
			out[i] = byte(n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s is not a string or a byte array", describe(v))
}

var evalBase64 = ApplyWithError(func(args []any) (any, error) {
	b, err := bytesArg(args[0])
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}, nil)

var evalBase64ToBinary = ApplyWithError(func(args []any) (any, error) {
	return base64.StdEncoding.DecodeString(str(args[0]))
}, VerifyStringOrNull)

var evalBase64ToString = ApplyWithError(func(args []any) (any, error) {
	b, err := base64.StdEncoding.DecodeString(str(args[0]))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}, VerifyStringOrNull)

var evalBinary = ApplyWithError(func(args []any) (any, error) {
	return bytesArg(args[0])
}, VerifyStringOrNull)

const dataURIPrefix = "data:text/plain;charset=utf-8;base64,"

var evalDataURI = ApplyWithError(func(args []any) (any, error) {
	b, err := bytesArg(args[0])
	if err != nil {
		return nil, err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(b), nil
}, nil)

// decodeDataURI returns the payload of a base64 data URI.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("%s is not a data URI", describe(uri))
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("%s is not a data URI", describe(uri))
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

var evalDataURIToBinary = ApplyWithError(func(args []any) (any, error) {
	return decodeDataURI(str(args[0]))
}, VerifyString)

var evalDataURIToString = ApplyWithError(func(args []any) (any, error) {
	b, err := decodeDataURI(str(args[0]))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}, VerifyString)

// escapeDataString percent-encodes everything but RFC 3986 unreserved
// characters.
func escapeDataString(s string) string {
	const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~"
	var buf strings.Builder
	for _, b := range []byte(s) {
		if strings.IndexByte(unreserved, b) >= 0 {
			buf.WriteByte(b)
		} else {
			fmt.Fprintf(&buf, "%%%02X", b)
		}
	}
	return buf.String()
}

var evalURIComponent = Apply(func(args []any) any {
	return escapeDataString(str(args[0]))
}, VerifyStringOrNull)

var evalURIComponentToString = ApplyWithError(func(args []any) (any, error) {
	s, err := url.PathUnescape(str(args[0]))
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid URI component: %w", describe(args[0]), err)
	}
	return s, nil
}, VerifyStringOrNull)

// evalFormatNumber renders (number, precision, locale?) with grouping.
var evalFormatNumber = ApplyWithOptionsAndError(func(args []any, opts *types.Options) (any, error) {
	f, ok := ToFloat64(args[0])
	if !ok {
		return nil, fmt.Errorf("%s is not a number", describe(args[0]))
	}
	precision, ok := ToInt64(args[1])
	if !ok || !IsInteger(args[1]) || precision < 0 {
		return nil, errors.New("precision must be a non-negative integer")
	}
	tag, err := localeArg(args, 2, opts)
	if err != nil {
		return nil, err
	}
	return formatNumberLocale(f, int(precision), tag), nil
}, VerifyNotNull)
