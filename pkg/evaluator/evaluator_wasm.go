//go:build (js && wasm) || wasip1

package evaluator

// init disables parallel EvalMany on WebAssembly targets.
//
// On js/wasm the JavaScript runtime is single-threaded: goroutines are
// multiplexed on one OS thread, so fanning out buys nothing and can stall
// the event loop. wasip1 gets the same default since the Go runtime does
// not support WASI threads.
func init() {
	defaultConcurrency = false
}
