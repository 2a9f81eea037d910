package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/scene"
)

// EvalTimeout is the default limit for evaluating one plan.
const EvalTimeout = 5 * time.Second

// ErrSuperseded is returned for a plan whose evaluation finished after a
// newer plan was submitted to the same engine.
var ErrSuperseded = errors.New("engine: plan superseded by a newer evaluation")

// evalResult carries a plan's scene out of its evaluation goroutine.
type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// run is one in-flight plan evaluation.
type run struct {
	gen uint64
	ch  chan evalResult
}

// start claims the next generation and evaluates source in its own
// goroutine. A panic in a plan form becomes a fatal error.
func (e *Engine) start(source string) run {
	e.mu.Lock()
	e.generation++
	r := run{gen: e.generation, ch: make(chan evalResult, 1)}
	e.mu.Unlock()

	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.ch <- evalResult{err: fmt.Errorf("engine: panic while evaluating plan: %v", p)}
			}
		}()
		s, evalErrs, err := e.evaluate(source)
		r.ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()
	return r
}

// wait blocks until r produces a scene or the engine's timeout expires. A
// timed-out plan keeps running in the background and its scene is dropped.
func (e *Engine) wait(r run) (*scene.Scene, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-r.ch:
		if !e.current(r.gen) {
			logging.Logger().Debug("engine: dropped superseded plan", "generation", r.gen)
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		logging.Logger().Debug("engine: plan timed out", "generation", r.gen, "timeout", e.timeout)
		return nil, nil, fmt.Errorf("engine: plan evaluation timed out after %s", e.timeout)
	}
}

// current reports whether gen is the newest evaluation started.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
