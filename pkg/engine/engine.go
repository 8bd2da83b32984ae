// Package engine evaluates trimesh scripts. It wraps zygomys in a
// sandboxed environment whose builtins drive a geometry kernel, and
// collects the meshes a script emits.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
)

// ErrTimeout is returned when an evaluation runs longer than the engine's
// timeout.
var ErrTimeout = errors.New("engine: evaluation timed out")

// ErrSuperseded is returned for an evaluation that finished after a newer
// one had started.
var ErrSuperseded = errors.New("engine: evaluation superseded by newer request")

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result is what a script produced: the meshes passed to emit, in order.
type Result struct {
	Meshes []*mesh.Mesh
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment for
// determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kernel  *kernel.Kernel
	timeout time.Duration
	logger  *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithKernel sets the kernel the builtins call into.
func WithKernel(k *kernel.Kernel) Option {
	return func(e *Engine) {
		if k != nil {
			e.kernel = k
		}
	}
}

// WithTimeout replaces EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger for evaluation statistics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a new Engine instance with a default kernel.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: EvalTimeout,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(e)
	}
	if e.kernel == nil {
		e.kernel = kernel.New()
	}
	return e
}

// Evaluate runs a script and returns the meshes it emitted.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic): returns nil + nil + error
//
// When Evaluate returns early the context handed to the builtins is
// cancelled, so a running boolean operation stops at its next face.
func (e *Engine) Evaluate(ctx context.Context, source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	evalCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan evalResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(evalCtx, source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	res, evalErrs, err := waitWithTimeout(ctx, ch, e.timeout, gen, &e.mu, &e.generation)
	switch {
	case err != nil:
		e.logger.Printf("evaluation %d failed after %s: %v", gen, time.Since(start), err)
	case len(evalErrs) > 0:
		e.logger.Printf("evaluation %d: %d errors", gen, len(evalErrs))
	default:
		e.logger.Printf("evaluation %d: %d meshes in %s", gen, len(res.Meshes), time.Since(start))
	}
	return res, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx context.Context, source string) (*Result, []EvalError, error) {
	// Empty source is a valid program that emits nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	res := &Result{}
	registerBuiltins(env, &builtins{ctx: ctx, k: e.kernel, out: res})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
