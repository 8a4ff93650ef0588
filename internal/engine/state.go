package engine

import "docket/internal/logging"

// State names one phase of a cataloging run.
type State string

const (
	StateInit            State = "init"
	StateLoadingExisting State = "loading_existing"
	StateWalking         State = "walking"
	StateDeduplicating   State = "deduplicating"
	StateFlushing        State = "flushing"
	StateExporting       State = "exporting"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

func (e *Engine) setState(state State) {
	e.mu.Lock()
	e.state = state
	e.history = append(e.history, state)
	e.mu.Unlock()
	e.logger.Debug("state changed", logging.String("state", string(state)))
}

// State returns the engine's current phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// States returns the phases the engine has passed through, in order.
func (e *Engine) States() []State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]State, len(e.history))
	copy(out, e.history)
	return out
}
