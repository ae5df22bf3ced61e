// Package check runs lightweight post-load validation over a finished
// model: named metrics with pass/fail, no mutation.
package check

// #region imports
import (
	"fmt"
	"math"
	"sort"

	"github.com/cancetinsoy/stormenv/internal/explicit"
)

// #endregion imports

// #region types

// probSumTolerance is the acceptable deviation of a normalized outcome
// distribution from 1.0.
const probSumTolerance = 1e-9

// Metric is one named verification measurement.
type Metric struct {
	Name  string
	Value float64
	Pass  bool
}

// Result aggregates all metrics for one model.
type Result struct {
	Passed   bool
	Metrics  []Metric
	Failures []string
}

// #endregion types

// #region verify

// Verify checks the loader's invariants on m: every outcome distribution
// sums to 1 within tolerance, the initial state belongs to the state set,
// per-state action lists are sorted and deduplicated, and every
// destination is a known state.
func Verify(m *explicit.Model) Result {
	var metrics []Metric
	var failures []string
	passed := true

	// 1. State set is nonempty
	stateCountPass := len(m.States) > 0
	metrics = append(metrics, Metric{Name: "state_count", Value: float64(len(m.States)), Pass: stateCountPass})
	if !stateCountPass {
		passed = false
		failures = append(failures, "state set is empty")
	}

	stateSet := make(map[int]struct{}, len(m.States))
	for _, s := range m.States {
		stateSet[s] = struct{}{}
	}

	// 2. Probability sums
	maxErr := 0.0
	for key, outcomes := range m.Transitions {
		sum := 0.0
		for _, o := range outcomes {
			sum += o.Prob
		}
		err := math.Abs(sum - 1.0)
		if err > maxErr {
			maxErr = err
		}
		if err > probSumTolerance {
			failures = append(failures, fmt.Sprintf("(%d,%d): probabilities sum to %.12f", key.State, key.Action, sum))
		}
	}
	sumPass := maxErr <= probSumTolerance
	metrics = append(metrics, Metric{Name: "max_prob_sum_error", Value: maxErr, Pass: sumPass})
	if !sumPass {
		passed = false
	}

	// 3. Initial state membership
	if stateCountPass {
		_, member := stateSet[m.InitialState]
		metrics = append(metrics, Metric{Name: "initial_state_member", Value: boolValue(member), Pass: member})
		if !member {
			passed = false
			failures = append(failures, fmt.Sprintf("initial state %d is not in the state set", m.InitialState))
		}
	}

	// 4. Action lists sorted and deduplicated
	actionsOK := true
	for s, actions := range m.ActionsByState {
		if !sort.IntsAreSorted(actions) {
			actionsOK = false
			failures = append(failures, fmt.Sprintf("state %d: action list not sorted: %v", s, actions))
			continue
		}
		for i := 1; i < len(actions); i++ {
			if actions[i] == actions[i-1] {
				actionsOK = false
				failures = append(failures, fmt.Sprintf("state %d: duplicate action %d", s, actions[i]))
				break
			}
		}
	}
	metrics = append(metrics, Metric{Name: "action_lists_ordered", Value: boolValue(actionsOK), Pass: actionsOK})
	if !actionsOK {
		passed = false
	}

	// 5. Destinations belong to the state set
	destsOK := true
	for key, outcomes := range m.Transitions {
		for _, o := range outcomes {
			if _, member := stateSet[o.Dest]; !member {
				destsOK = false
				failures = append(failures, fmt.Sprintf("(%d,%d): unknown destination %d", key.State, key.Action, o.Dest))
			}
		}
	}
	metrics = append(metrics, Metric{Name: "destinations_known", Value: boolValue(destsOK), Pass: destsOK})
	if !destsOK {
		passed = false
	}

	return Result{Passed: passed, Metrics: metrics, Failures: failures}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion verify
