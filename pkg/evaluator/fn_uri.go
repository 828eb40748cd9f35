package evaluator

import (
	"fmt"
	"net/url"
	"strconv"
)

var defaultPorts = map[string]int64{
	"http":  80,
	"https": 443,
	"ftp":   21,
	"ws":    80,
	"wss":   443,
}

// parseAbsoluteURI accepts only absolute URIs with a scheme and host.
func parseAbsoluteURI(v any) (*url.URL, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s is not a string", describe(v))
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%s is not a valid URI", describe(v))
	}
	return u, nil
}

func uriPart(part func(u *url.URL) any) func(args []any) (any, error) {
	return func(args []any) (any, error) {
		u, err := parseAbsoluteURI(args[0])
		if err != nil {
			return nil, err
		}
		return part(u), nil
	}
}

func uriPath(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

var (
	evalURIHost = ApplyWithError(uriPart(func(u *url.URL) any {
		return u.Hostname()
	}), VerifyString)

	evalURIPath = ApplyWithError(uriPart(func(u *url.URL) any {
		return uriPath(u)
	}), VerifyString)

	evalURIPathAndQuery = ApplyWithError(uriPart(func(u *url.URL) any {
		if u.RawQuery == "" {
			return uriPath(u)
		}
		return uriPath(u) + "?" + u.RawQuery
	}), VerifyString)

	evalURIQuery = ApplyWithError(uriPart(func(u *url.URL) any {
		if u.RawQuery == "" {
			return ""
		}
		return "?" + u.RawQuery
	}), VerifyString)

	evalURIScheme = ApplyWithError(uriPart(func(u *url.URL) any {
		return u.Scheme
	}), VerifyString)
)

var evalURIPort = ApplyWithError(func(args []any) (any, error) {
	u, err := parseAbsoluteURI(args[0])
	if err != nil {
		return nil, err
	}
	if p := u.Port(); p != "" {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s has an invalid port", describe(args[0]))
		}
		return n, nil
	}
	if n, ok := defaultPorts[u.Scheme]; ok {
		return n, nil
	}
	return int64(-1), nil
}, VerifyString)
