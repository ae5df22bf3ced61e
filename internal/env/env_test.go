package env

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cancetinsoy/stormenv/internal/explicit"
)

// helper: parse an inline model, failing the test on error.
func parseModel(t *testing.T, tra, rew, lab string) *explicit.Model {
	t.Helper()
	var rewR, labR io.Reader
	if rew != "" {
		rewR = strings.NewReader(rew)
	}
	if lab != "" {
		labR = strings.NewReader(lab)
	}
	m, err := explicit.Parse(strings.NewReader(tra), rewR, labR, explicit.Options{})
	if err != nil {
		t.Fatalf("parse model: %v", err)
	}
	return m
}

const chainTra = "mdp\n0 0 1 0.5\n0 0 2 0.5\n1 0 1 1.0\n2 0 1 1.0\n"

// #region test-reset

func TestReset_ReturnsInitialState(t *testing.T) {
	m := parseModel(t, chainTra, "", "0 init\n")
	e := New(m, 1)

	obs := e.Reset()
	if len(obs) != 1 || obs.State() != 0 {
		t.Fatalf("reset: got %v, want [0]", obs)
	}

	// Reset after stepping still lands on the initial state.
	if _, err := e.Step(0); err != nil {
		t.Fatalf("step: %v", err)
	}
	if obs := e.Reset(); obs.State() != 0 {
		t.Errorf("reset after step: got %v, want [0]", obs)
	}
}

// #endregion test-reset

// #region test-step

func TestStep_SamplesByCumulativeProbability(t *testing.T) {
	m := parseModel(t, chainTra, "", "0 init\n")
	e := New(m, 1)
	e.Reset()
	e.sample = func() float64 { return 0.3 }

	// draw 0.3 lands in the first 0.5 bucket: 0 → 1
	res, err := e.Step(0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Observation.State() != 1 {
		t.Errorf("next state: got %d, want 1", res.Observation.State())
	}
	if res.Reward != 0.0 {
		t.Errorf("reward: got %v, want 0.0 (no reward file)", res.Reward)
	}
	if res.Done {
		t.Error("done must always be false")
	}
	if res.Info == nil || len(res.Info) != 0 {
		t.Errorf("info: got %v, want empty map", res.Info)
	}

	// state 1 has a single outcome: deterministic self-loop
	res, err = e.Step(0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Observation.State() != 1 {
		t.Errorf("next state: got %d, want 1", res.Observation.State())
	}
}

func TestStep_SecondBucket(t *testing.T) {
	m := parseModel(t, chainTra, "", "0 init\n")
	e := New(m, 1)
	e.Reset()
	e.sample = func() float64 { return 0.7 }

	res, err := e.Step(0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Observation.State() != 2 {
		t.Errorf("next state: got %d, want 2", res.Observation.State())
	}
}

func TestStep_RewardLookup(t *testing.T) {
	m := parseModel(t, chainTra, "0 0 1 5.0\n", "0 init\n")
	e := New(m, 1)
	e.Reset()
	e.sample = func() float64 { return 0.3 }

	res, err := e.Step(0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Reward != 5.0 {
		t.Errorf("reward 0→1: got %v, want 5.0", res.Reward)
	}

	// 1 → 1 has no reward entry; sparse default applies.
	res, err = e.Step(0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Reward != 0.0 {
		t.Errorf("reward 1→1: got %v, want 0.0", res.Reward)
	}
}

func TestStep_UnknownActionFails(t *testing.T) {
	m := parseModel(t, chainTra, "", "0 init\n")
	e := New(m, 1)
	e.Reset()

	_, err := e.Step(99)
	if err == nil {
		t.Fatal("expected error for unknown action")
	}
	var nte *NoTransitionError
	if !errors.As(err, &nte) {
		t.Fatalf("expected *NoTransitionError, got %T: %v", err, err)
	}
	if nte.State != 0 || nte.Action != 99 {
		t.Errorf("error fields: got state=%d action=%d", nte.State, nte.Action)
	}
	// Cursor must be unchanged after the failed step.
	if e.Current() != 0 {
		t.Errorf("cursor moved to %d after failed step", e.Current())
	}
}

func TestStep_FallbackToLastDestination(t *testing.T) {
	// Hand-built distribution whose probabilities fall fractionally short
	// of 1.0; a draw beyond the cumulative sum must pick the last
	// destination, not fail.
	m := &explicit.Model{
		States: []int{0, 1, 2},
		Transitions: map[explicit.TransKey][]explicit.Outcome{
			{State: 0, Action: 0}: {
				{Dest: 1, Prob: 0.5},
				{Dest: 2, Prob: 0.4999999999},
			},
		},
		Rewards:        map[explicit.RewardKey]float64{},
		ActionsByState: map[int][]int{0: {0}},
		InitialState:   0,
	}
	e := New(m, 1)
	e.Reset()
	e.sample = func() float64 { return 0.99999999999 }

	res, err := e.Step(0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Observation.State() != 2 {
		t.Errorf("fallback destination: got %d, want 2", res.Observation.State())
	}
}

// #endregion test-step

// #region test-determinism

func TestStep_SameSeedSameTrajectory(t *testing.T) {
	tra := "0 0 1 0.5\n0 0 2 0.5\n1 0 0 0.7\n1 0 2 0.3\n2 0 0 1.0\n"

	type obs struct {
		State  int
		Reward float64
	}
	run := func(seed int64) []obs {
		e := New(parseModel(t, tra, "0 0 1 1.5\n", ""), seed)
		e.Reset()
		var out []obs
		for i := 0; i < 50; i++ {
			res, err := e.Step(0)
			if err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
			out = append(out, obs{res.Observation.State(), res.Reward})
		}
		return out
	}

	if diff := cmp.Diff(run(42), run(42)); diff != "" {
		t.Errorf("same seed produced different trajectories (-a +b):\n%s", diff)
	}
}

// #endregion test-determinism

// #region test-accessors

func TestAccessors(t *testing.T) {
	m := parseModel(t, chainTra, "", "0 init\n")
	e := New(m, 1)
	e.Reset()

	if diff := cmp.Diff([]int{0, 1, 2}, e.States()); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, e.Actions()); diff != "" {
		t.Errorf("actions at cursor (-want +got):\n%s", diff)
	}
	// Unknown or absorbing state: empty list, not an error.
	if got := e.ActionsAt(42); len(got) != 0 {
		t.Errorf("actions at unknown state: got %v", got)
	}
}

func TestSummary(t *testing.T) {
	m := parseModel(t, chainTra, "", "0 init\n")
	e := New(m, 1)

	want := Summary{
		InitialState: 0,
		States:       []int{0, 1, 2},
		ActionsByState: map[int][]int{
			0: {0},
			1: {0},
			2: {0},
		},
		NumTransitions: 4,
	}
	if diff := cmp.Diff(want, e.Summary()); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}
}

// #endregion test-accessors
