package rollout

// #region imports
import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cancetinsoy/stormenv/internal/env"
	"github.com/cancetinsoy/stormenv/internal/explicit"
)

// #endregion imports

// #region fixture-types

// Fixture is the top-level JSON structure for a deterministic replay: an
// inline model, a seed, a scripted action sequence, and the expected
// (state, reward) observation per step.
type Fixture struct {
	Description string         `json:"description"`
	Tra         string         `json:"tra"`
	Rew         string         `json:"rew,omitempty"`
	Lab         string         `json:"lab,omitempty"`
	Strict      bool           `json:"strict,omitempty"`
	Seed        int64          `json:"seed"`
	Actions     []int          `json:"actions"`
	Expected    []ExpectedStep `json:"expected_steps"`
}

// ExpectedStep is the observation a fixture expects after one step.
type ExpectedStep struct {
	State  int     `json:"state"`
	Reward float64 `json:"reward"`
}

// FixtureResult compares one step against its expectation.
type FixtureResult struct {
	Index int
	Want  ExpectedStep
	Got   ExpectedStep
	Match bool
}

// #endregion fixture-types

// #region load-fixture

// LoadFixture reads a fixture JSON file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.Tra == "" {
		return nil, fmt.Errorf("fixture: missing inline tra source")
	}
	if len(f.Actions) != len(f.Expected) {
		return nil, fmt.Errorf("fixture: %d actions but %d expected steps", len(f.Actions), len(f.Expected))
	}
	return &f, nil
}

// #endregion load-fixture

// #region run-fixture

// RunFixture builds the fixture's model, replays the scripted actions
// with the fixture's seed, and diffs each step against the expectation.
func RunFixture(f *Fixture) ([]FixtureResult, error) {
	var rew, lab io.Reader
	if f.Rew != "" {
		rew = strings.NewReader(f.Rew)
	}
	if f.Lab != "" {
		lab = strings.NewReader(f.Lab)
	}
	m, err := explicit.Parse(strings.NewReader(f.Tra), rew, lab, explicit.Options{Strict: f.Strict})
	if err != nil {
		return nil, fmt.Errorf("fixture model: %w", err)
	}

	e := env.New(m, f.Seed)
	e.Reset()

	results := make([]FixtureResult, 0, len(f.Actions))
	for i, action := range f.Actions {
		res, err := e.Step(action)
		if err != nil {
			return results, fmt.Errorf("fixture step %d: %w", i, err)
		}
		got := ExpectedStep{State: res.Observation.State(), Reward: res.Reward}
		want := f.Expected[i]
		results = append(results, FixtureResult{
			Index: i,
			Want:  want,
			Got:   got,
			Match: got == want,
		})
	}
	return results, nil
}

// Mismatches counts the results that failed their expectation.
func Mismatches(results []FixtureResult) int {
	n := 0
	for _, r := range results {
		if !r.Match {
			n++
		}
	}
	return n
}

// #endregion run-fixture
