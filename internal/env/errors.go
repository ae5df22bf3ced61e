package env

import "fmt"

// #region no-transition

// NoTransitionError reports a Step call with an action that has no
// outcome distribution at the current state. This is a caller error; the
// cursor is left unchanged.
type NoTransitionError struct {
	State  int
	Action int
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transitions for state %d and action %d", e.State, e.Action)
}

// #endregion no-transition
