// Package env presents a loaded explicit MDP as an interactive
// environment: reset to the initial state, step by sampling the outcome
// distribution of (current state, action), look up the sparse reward.
//
// An Env owns the only mutable runtime state (the cursor) and a private
// seeded random source. The Model behind it is read-only, so several Env
// instances may share one Model; a single Env must have a single owner.
package env

// #region imports
import (
	"math/rand"

	"github.com/cancetinsoy/stormenv/internal/explicit"
)

// #endregion imports

// #region observation

// Observation wraps a state id as a 1-element sequence. Consumers of the
// environment treat state as a 1-ary tuple even though the underlying
// value is scalar, so Reset and Step always return length-1 observations.
type Observation []int

// State unwraps the single state id.
func (o Observation) State() int {
	return o[0]
}

// #endregion observation

// #region step-result

// StepResult is the outcome of one Step call. Done is always false: the
// model represents an ongoing average-reward process with no terminal
// signal. Info is an empty side channel reserved for future use.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	Info        map[string]any
}

// #endregion step-result

// #region env

// Env is the stepper over a finished Model.
type Env struct {
	model  *explicit.Model
	cursor int
	sample func() float64 // one uniform draw in [0, 1) per Step
}

// New creates an Env positioned at the model's initial state. The same
// seed and the same action sequence reproduce the same trajectory.
func New(m *explicit.Model, seed int64) *Env {
	rng := rand.New(rand.NewSource(seed))
	return &Env{
		model:  m,
		cursor: m.InitialState,
		sample: rng.Float64,
	}
}

// #endregion env

// #region reset

// Reset moves the cursor back to the initial state and returns it.
func (e *Env) Reset() Observation {
	e.cursor = e.model.InitialState
	return Observation{e.cursor}
}

// #endregion reset

// #region step

// Step samples a destination from the outcome distribution of
// (current state, action), resolves the reward for the taken transition,
// and advances the cursor. An action with no distribution at the current
// state returns a *NoTransitionError and leaves the cursor unchanged.
func (e *Env) Step(action int) (StepResult, error) {
	outcomes, ok := e.model.Outcomes(e.cursor, action)
	if !ok {
		return StepResult{}, &NoTransitionError{State: e.cursor, Action: action}
	}

	r := e.sample()
	cum := 0.0
	// Fallback to the last destination: rounding can leave the cumulative
	// sum fractionally short of 1.0.
	next := outcomes[len(outcomes)-1].Dest
	for _, o := range outcomes {
		cum += o.Prob
		if cum >= r {
			next = o.Dest
			break
		}
	}

	reward := e.model.Reward(e.cursor, action, next)
	e.cursor = next

	return StepResult{
		Observation: Observation{next},
		Reward:      reward,
		Done:        false,
		Info:        map[string]any{},
	}, nil
}

// #endregion step

// #region accessors

// Current returns the cursor state.
func (e *Env) Current() int {
	return e.cursor
}

// Actions returns the sorted legal action set at the cursor.
func (e *Env) Actions() []int {
	return e.ActionsAt(e.cursor)
}

// ActionsAt returns the sorted legal action set at state. A state with no
// outgoing transitions yields an empty list; it may legitimately be
// absorbing, even though Step would then fail there.
func (e *Env) ActionsAt(state int) []int {
	actions := e.model.Actions(state)
	out := make([]int, len(actions))
	copy(out, actions)
	return out
}

// States returns the full state id set, sorted ascending.
func (e *Env) States() []int {
	out := make([]int, len(e.model.States))
	copy(out, e.model.States)
	return out
}

// #endregion accessors

// #region summary

// Summary is a diagnostic snapshot of the loaded model.
type Summary struct {
	InitialState   int           `json:"initial_state"`
	States         []int         `json:"states"`
	ActionsByState map[int][]int `json:"actions_by_state"`
	NumTransitions int           `json:"num_transitions"`
}

// Summary reports the resolved initial state, the state list, per-state
// action lists, and the total transition-record count.
func (e *Env) Summary() Summary {
	actions := make(map[int][]int, len(e.model.ActionsByState))
	for s, list := range e.model.ActionsByState {
		cp := make([]int, len(list))
		copy(cp, list)
		actions[s] = cp
	}
	return Summary{
		InitialState:   e.model.InitialState,
		States:         e.States(),
		ActionsByState: actions,
		NumTransitions: e.model.NumTransitions(),
	}
}

// #endregion summary
