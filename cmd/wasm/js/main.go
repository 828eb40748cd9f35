//go:build js && wasm

// Command goexpr-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `goexpr` object with the following API:
//
//	goexpr.version()                         → string
//	goexpr.eval(expression, stateJSON)       → resultJSON  (throws on error)
//	goexpr.compile(expression)               → { eval(stateJSON) → resultJSON, references() → [string] }
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o goexpr.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const ge = await load()
//	const result = ge.eval("concat(user.first, ' ', user.last)", JSON.stringify(state))
//	console.log(JSON.parse(result))
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/goexpr"
	"github.com/sandrolain/goexpr/pkg/evaluator"
)

var ev = evaluator.New(evaluator.WithConcurrency(false), evaluator.WithCaching(true))

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

func parseState(fn, stateJSON string) any {
	if stateJSON == "" {
		return nil
	}
	state, err := evaluator.ParseJSON(stateJSON)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: invalid state JSON: %v", fn, err))
	}
	return state
}

func marshal(fn string, v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal result: %v", fn, err))
	}
	return string(out)
}

// jsEval implements goexpr.eval(expression, stateJSON) → resultJSON.
func jsEval(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("goexpr.eval requires an expression and an optional state JSON string")
	}
	stateJSON := ""
	if len(args) > 1 {
		stateJSON = args[1].String()
	}
	state := parseState("goexpr.eval", stateJSON)

	result, err := ev.Eval(context.Background(), args[0].String(), state, nil)
	if err != nil {
		jsThrow(fmt.Sprintf("goexpr.eval: %v", err))
	}
	return marshal("goexpr.eval", result)
}

// jsCompile implements goexpr.compile(expression).
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("goexpr.compile requires 1 argument: expression (string)")
	}

	expr, err := ev.Parse(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("goexpr.compile: %v", err))
	}

	evalFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		stateJSON := ""
		if len(innerArgs) > 0 {
			stateJSON = innerArgs[0].String()
		}
		state := parseState("compiled.eval", stateJSON)
		r, e := ev.Evaluate(context.Background(), expr, state, nil)
		if e != nil {
			jsThrow(fmt.Sprintf("compiled.eval: %v", e))
		}
		return marshal("compiled.eval", r)
	})

	refsFn := js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
		refs := evaluator.References(expr)
		out := make([]interface{}, len(refs))
		for i, r := range refs {
			out[i] = r
		}
		return js.ValueOf(out)
	})

	return js.ValueOf(map[string]interface{}{
		"eval":       evalFn,
		"references": refsFn,
		"source":     expr.String(),
	})
}

func main() {
	api := map[string]interface{}{
		"eval":    js.FuncOf(jsEval),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return goexpr.Version()
		}),
	}
	js.Global().Set("goexpr", js.ValueOf(api))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
