package explicit

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// helper: write one source file into dir and return its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const basicTra = `mdp
# two-state chain with a stochastic first step
0 0 1 0.5
0 0 2 0.5
1 0 1 1.0
2 0 1 1.0
`

// #region test-load

func TestLoad_AllThreeSources(t *testing.T) {
	dir := t.TempDir()
	tra := writeFile(t, dir, "model.tra", basicTra)
	rew := writeFile(t, dir, "model.tra.rew", "0 0 1 5.0\n")
	lab := writeFile(t, dir, "model.lab", "#DECLARATION\ninit one\n#END\n0 init\n1 one\n")

	m, err := Load(Paths{Tra: tra, Rew: rew, Lab: lab}, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := m.States; len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("states: got %v", got)
	}
	if m.InitialState != 0 {
		t.Errorf("initial state: got %d, want 0", m.InitialState)
	}
	if m.NumTransitions() != 4 {
		t.Errorf("num transitions: got %d, want 4", m.NumTransitions())
	}
	if got := m.Actions(0); len(got) != 1 || got[0] != 0 {
		t.Errorf("actions(0): got %v", got)
	}
	if got := m.Reward(0, 0, 1); got != 5.0 {
		t.Errorf("reward(0,0,1): got %v, want 5.0", got)
	}
	// Sparse map: absent entries default to 0.0
	if got := m.Reward(0, 0, 2); got != 0.0 {
		t.Errorf("reward(0,0,2): got %v, want 0.0", got)
	}
}

func TestLoad_MissingOptionalSources(t *testing.T) {
	dir := t.TempDir()
	tra := writeFile(t, dir, "model.tra", basicTra)

	m, err := Load(Paths{
		Tra: tra,
		Rew: filepath.Join(dir, "does-not-exist.rew"),
		Lab: filepath.Join(dir, "does-not-exist.lab"),
	}, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Rewards) != 0 {
		t.Errorf("rewards should be empty, got %v", m.Rewards)
	}
	// No label file: initial falls back to the smallest state id.
	if m.InitialState != 0 {
		t.Errorf("initial state: got %d, want 0", m.InitialState)
	}
}

func TestLoad_MissingTransitionsFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Paths{Tra: filepath.Join(dir, "nope.tra")}, Options{})
	if err == nil {
		t.Fatal("expected error for missing transition file")
	}
}

// #endregion test-load

// #region test-tolerance

func TestParse_SkipsMalformedLines(t *testing.T) {
	// "0 0 1" has three fields and must be discarded without contributing
	// states or actions. "9 9" likewise.
	src := "mdp\n0 0 1\n9 9\n3 0 4 1.0\n"
	m, err := Parse(strings.NewReader(src), nil, nil, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.States; len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("states: got %v, want [3 4]", got)
	}
	if len(m.Actions(0)) != 0 {
		t.Errorf("state 0 should not exist, actions: %v", m.Actions(0))
	}
}

func TestParse_StrictRejectsMalformedLines(t *testing.T) {
	src := "0 0 1\n3 0 4 1.0\n"
	_, err := Parse(strings.NewReader(src), nil, nil, Options{Strict: true})
	if err == nil {
		t.Fatal("expected field-count error in strict mode")
	}
	if !strings.Contains(err.Error(), `"0 0 1"`) {
		t.Errorf("error should name the line, got: %v", err)
	}
}

func TestParse_NonNumericTokenFails(t *testing.T) {
	src := "0 0 1 high\n"
	_, err := Parse(strings.NewReader(src), nil, nil, Options{})
	if err == nil {
		t.Fatal("expected format error for non-numeric probability")
	}
	if !strings.Contains(err.Error(), `"0 0 1 high"`) {
		t.Errorf("error should name the line, got: %v", err)
	}
}

func TestParse_TagLineCaseInsensitive(t *testing.T) {
	src := "MDP\n0 0 1 1.0\n"
	m, err := Parse(strings.NewReader(src), nil, nil, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.NumTransitions() != 1 {
		t.Errorf("num transitions: got %d, want 1", m.NumTransitions())
	}
}

// #endregion test-tolerance

// #region test-normalization

func TestFinalize_RescalesImpreciseSums(t *testing.T) {
	src := "0 0 1 0.25\n0 0 2 0.25\n"
	m, err := Parse(strings.NewReader(src), nil, nil, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	outcomes, ok := m.Outcomes(0, 0)
	if !ok || len(outcomes) != 2 {
		t.Fatalf("outcomes(0,0): got %v, ok=%v", outcomes, ok)
	}
	sum := 0.0
	for _, o := range outcomes {
		sum += o.Prob
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("rescaled sum: got %v", sum)
	}
	if math.Abs(outcomes[0].Prob-0.5) > 1e-9 {
		t.Errorf("rescaled prob: got %v, want 0.5", outcomes[0].Prob)
	}
}

func TestFinalize_DegenerateSumBecomesUniform(t *testing.T) {
	src := "0 0 1 0.0\n0 0 2 0.0\n0 0 3 0.0\n"
	m, err := Parse(strings.NewReader(src), nil, nil, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	outcomes, _ := m.Outcomes(0, 0)
	if len(outcomes) != 3 {
		t.Fatalf("outcomes: got %v", outcomes)
	}
	for i, o := range outcomes {
		if math.Abs(o.Prob-1.0/3.0) > 1e-9 {
			t.Errorf("outcome %d: got prob %v, want 1/3", i, o.Prob)
		}
	}
	// Insertion order preserved
	if outcomes[0].Dest != 1 || outcomes[1].Dest != 2 || outcomes[2].Dest != 3 {
		t.Errorf("destination order changed: %v", outcomes)
	}
}

func TestFinalize_EveryDistributionSumsToOne(t *testing.T) {
	src := "mdp\n0 0 1 0.3\n0 0 2 0.8\n0 1 0 1.0\n1 0 0 0.0\n1 0 1 0.0\n"
	m, err := Parse(strings.NewReader(src), nil, nil, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for key, outcomes := range m.Transitions {
		sum := 0.0
		for _, o := range outcomes {
			sum += o.Prob
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("(%d,%d): sum %v", key.State, key.Action, sum)
		}
	}
}

// #endregion test-normalization

// #region test-labels

func TestParse_InitLabelWins(t *testing.T) {
	lab := "#DECLARATION\ninit done\n#END\n5 done\n7 init\n"
	m, err := Parse(strings.NewReader("7 0 5 1.0\n5 0 7 1.0\n"), nil, strings.NewReader(lab), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.InitialState != 7 {
		t.Errorf("initial state: got %d, want 7", m.InitialState)
	}
}

func TestParse_SmallestInitLabelWins(t *testing.T) {
	lab := "9 init\n2 init extra\n"
	m, err := Parse(strings.NewReader("2 0 9 1.0\n9 0 2 1.0\n"), nil, strings.NewReader(lab), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.InitialState != 2 {
		t.Errorf("initial state: got %d, want 2", m.InitialState)
	}
}

func TestParse_DeclarationBodyIgnored(t *testing.T) {
	// The block body lists label names; "init" there must not be taken as
	// an assignment.
	lab := "#DECLARATION\ninit\n#END\n4 other\n"
	m, err := Parse(strings.NewReader("3 0 4 1.0\n4 0 3 1.0\n"), nil, strings.NewReader(lab), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.InitialState != 3 {
		t.Errorf("initial state: got %d, want 3 (min fallback)", m.InitialState)
	}
}

func TestParse_BadLabelStateFails(t *testing.T) {
	lab := "abc init\n"
	_, err := Parse(strings.NewReader("0 0 1 1.0\n"), nil, strings.NewReader(lab), Options{})
	if err == nil {
		t.Fatal("expected format error for non-numeric label state")
	}
}

// #endregion test-labels
