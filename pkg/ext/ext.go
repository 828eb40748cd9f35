// Package ext provides optional extension functions that go beyond the
// standard library.
//
// The extension functions live in sub-packages grouped by category:
//   - extcrypto – hash, hmac
//
// # Integration – all extensions at once
//
//	ev := evaluator.New(ext.WithAll())
//	result, err := ev.Eval(ctx, "hash(user.email, 'sha256')", state, nil)
//
// # Integration – single function from a sub-package
//
//	import "github.com/sandrolain/goexpr/pkg/ext/extcrypto"
//
//	ev := evaluator.New(evaluator.WithCustomFunction(extcrypto.Hash()))
package ext

import (
	"github.com/sandrolain/goexpr/pkg/evaluator"
	"github.com/sandrolain/goexpr/pkg/ext/extcrypto"
	"github.com/sandrolain/goexpr/pkg/functions"
)

// All returns every extension function definition.
func All() functions.Set {
	var all functions.Set
	all = append(all, extcrypto.All()...)
	return all
}

// WithAll returns an EvalOption that registers all extension functions.
func WithAll() evaluator.EvalOption {
	return evaluator.WithCustomFunction(All()...)
}

// WithCrypto returns an EvalOption for the cryptographic functions.
func WithCrypto() evaluator.EvalOption {
	return evaluator.WithCustomFunction(extcrypto.All()...)
}
