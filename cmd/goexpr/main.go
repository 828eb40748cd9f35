// Command goexpr evaluates an expression against a state document.
//
// Usage:
//
//	goexpr -e "concat(user.first, ' ', user.last)" -state state.yaml
//	goexpr -e "formatNumber(total, 2)" -state state.json -locale de-DE
//	goexpr -e "hash(name, 'sha256')" -ext
//	echo '{"expression":"a + 1","state":{"a":1}}' | goexpr -stdin
//
// The result is printed as JSON. In -stdin mode a single request object is
// read and a single response object is written:
//
//	stdin:  { "expression": "<expr>", "state": <any JSON value>, "locale": "<tag>" }
//	stdout: { "result": <any JSON value> }    on success
//	        { "error":  "<message>"       }    on failure (exit code 1)
//
// The -stdin protocol also serves the wasip1 build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o goexpr.wasm ./cmd/goexpr/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goexpr"
	"github.com/sandrolain/goexpr/pkg/config"
	"github.com/sandrolain/goexpr/pkg/evaluator"
	"github.com/sandrolain/goexpr/pkg/ext"
	"github.com/sandrolain/goexpr/pkg/types"
)

type request struct {
	Expression string          `json:"expression"`
	State      json.RawMessage `json:"state,omitempty"`
	Locale     string          `json:"locale,omitempty"`
}

type response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("goexpr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	exprText := fs.String("e", "", "expression to evaluate")
	statePath := fs.String("state", "", "state file (.json, .yaml or .yml)")
	locale := fs.String("locale", "", "locale for culture-aware functions, e.g. de-DE")
	configPath := fs.String("config", "", "engine config file (.json, .yaml or .yml)")
	useStdin := fs.Bool("stdin", false, "read a JSON request from stdin and write a JSON response")
	useExt := fs.Bool("ext", false, "register extension functions (hash, hmac)")
	refs := fs.Bool("refs", false, "print the paths the expression reads instead of evaluating it")
	verbose := fs.Bool("v", false, "log evaluations to stderr")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *version {
		fmt.Fprintln(stdout, goexpr.Version())
		return 0
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	opts := []evaluator.EvalOption{
		evaluator.WithLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))),
	}
	if *configPath != "" {
		ec, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "goexpr: %v\n", err)
			return 1
		}
		opts = append(opts, ec.Options()...)
	}
	if *verbose {
		opts = append(opts, evaluator.WithDebug(true))
	}
	if *useExt {
		opts = append(opts, ext.WithAll())
	}
	ev := evaluator.New(opts...)

	if *useStdin {
		return serveStdin(ev, stdin, stdout)
	}

	if *exprText == "" {
		fmt.Fprintln(stderr, "goexpr: missing -e expression")
		fs.Usage()
		return 2
	}

	if *refs {
		expr, err := ev.Parse(*exprText)
		if err != nil {
			fmt.Fprintf(stderr, "goexpr: %v\n", err)
			return 1
		}
		for _, ref := range evaluator.References(expr) {
			fmt.Fprintln(stdout, ref)
		}
		return 0
	}

	var state any
	if *statePath != "" {
		var err error
		if state, err = loadState(*statePath); err != nil {
			fmt.Fprintf(stderr, "goexpr: %v\n", err)
			return 1
		}
	}

	var callOpts *types.Options
	if *locale != "" {
		callOpts = types.NewOptions().WithLocale(*locale)
	}

	result, err := ev.Eval(context.Background(), *exprText, state, callOpts)
	if err != nil {
		fmt.Fprintf(stderr, "goexpr: %v\n", err)
		return 1
	}
	out, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(stderr, "goexpr: marshal result: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

func serveStdin(ev *evaluator.Evaluator, stdin io.Reader, stdout io.Writer) int {
	write := func(r response, code int) int {
		_ = json.NewEncoder(stdout).Encode(r)
		return code
	}

	var req request
	if err := json.NewDecoder(stdin).Decode(&req); err != nil {
		return write(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	var state any
	if len(req.State) > 0 {
		var err error
		if state, err = evaluator.ParseJSON(string(req.State)); err != nil {
			return write(response{Error: "invalid state: " + err.Error()}, 1)
		}
	}

	var callOpts *types.Options
	if req.Locale != "" {
		callOpts = types.NewOptions().WithLocale(req.Locale)
	}

	result, err := ev.Eval(context.Background(), req.Expression, state, callOpts)
	if err != nil {
		return write(response{Error: err.Error()}, 1)
	}
	return write(response{Result: result}, 0)
}

// loadState reads a state document. JSON keeps integers as int64; YAML
// decodes them as int, which the engine treats the same way.
func loadState(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		state, err := evaluator.ParseJSON(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse state json: %w", err)
		}
		return state, nil
	case ".yaml", ".yml":
		var state any
		if err := yaml.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("parse state yaml: %w", err)
		}
		return state, nil
	default:
		return nil, errors.New("unsupported state file extension: " + filepath.Ext(path))
	}
}
