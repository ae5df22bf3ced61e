// Package explicit loads Storm-style explicit MDP files (.tra, .tra.rew,
// .lab) into an in-memory model. The transition file is required; reward
// and label files are optional. Parsing is deliberately tolerant: lines
// with the wrong field count are discarded unless strict mode is on.
package explicit

// #region keys

// TransKey identifies one (state, action) pair. Actions are scoped to a
// state: the same integer may label unrelated actions at different states.
type TransKey struct {
	State  int
	Action int
}

// RewardKey identifies one (state, action, destination) triple in the
// sparse reward map. Absent keys mean reward 0.0.
type RewardKey struct {
	State  int
	Action int
	Dest   int
}

// #endregion keys

// #region outcome

// Outcome is one weighted destination of a (state, action) pair.
// Outcomes keep the insertion order of the transition file; that order is
// what makes sampling deterministic for a fixed seed.
type Outcome struct {
	Dest int
	Prob float64
}

// #endregion outcome

// #region model

// Model is the finished in-memory MDP. It is built once by Load and is
// read-only afterwards, so a single Model may back any number of Env
// instances concurrently.
type Model struct {
	States         []int // sorted ascending
	Transitions    map[TransKey][]Outcome
	Rewards        map[RewardKey]float64
	ActionsByState map[int][]int // sorted ascending, deduplicated
	InitialState   int
}

// Outcomes returns the outcome distribution for (state, action), and
// whether one exists.
func (m *Model) Outcomes(state, action int) ([]Outcome, bool) {
	o, ok := m.Transitions[TransKey{State: state, Action: action}]
	return o, ok
}

// Reward returns the reward attached to (state, action, dest), 0.0 when
// no entry exists.
func (m *Model) Reward(state, action, dest int) float64 {
	return m.Rewards[RewardKey{State: state, Action: action, Dest: dest}]
}

// Actions returns the sorted legal action set for state. A state with no
// outgoing transitions yields an empty list, not an error.
func (m *Model) Actions(state int) []int {
	return m.ActionsByState[state]
}

// NumTransitions counts every (state, action, destination) record.
func (m *Model) NumTransitions() int {
	n := 0
	for _, outcomes := range m.Transitions {
		n += len(outcomes)
	}
	return n
}

// #endregion model
