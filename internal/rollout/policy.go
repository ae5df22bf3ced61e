package rollout

// #region imports
import (
	"fmt"
	"math/rand"

	"github.com/cancetinsoy/stormenv/internal/env"
)

// #endregion imports

// #region policy

// Policy chooses the next action for the environment's current state.
type Policy interface {
	Name() string
	Action(e *env.Env) (int, error)
}

// #endregion policy

// #region random-policy

// RandomPolicy samples uniformly over the legal actions. It owns its own
// seeded rng so that policy draws never disturb the environment's
// transition sampling stream.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy creates a RandomPolicy with its own seeded source.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Name() string { return "random" }

func (p *RandomPolicy) Action(e *env.Env) (int, error) {
	actions := e.Actions()
	if len(actions) == 0 {
		return 0, fmt.Errorf("no legal actions at state %d", e.Current())
	}
	return actions[p.rng.Intn(len(actions))], nil
}

// #endregion random-policy

// #region first-action-policy

// FirstActionPolicy always picks the smallest legal action. Deterministic
// regardless of seed; handy as a baseline and in fixtures.
type FirstActionPolicy struct{}

func (FirstActionPolicy) Name() string { return "first" }

func (FirstActionPolicy) Action(e *env.Env) (int, error) {
	actions := e.Actions()
	if len(actions) == 0 {
		return 0, fmt.Errorf("no legal actions at state %d", e.Current())
	}
	return actions[0], nil
}

// #endregion first-action-policy

// #region scripted-policy

// ScriptedPolicy replays a fixed action sequence and fails once the
// script is exhausted.
type ScriptedPolicy struct {
	actions []int
	next    int
}

// NewScriptedPolicy creates a ScriptedPolicy over the given sequence.
func NewScriptedPolicy(actions []int) *ScriptedPolicy {
	return &ScriptedPolicy{actions: actions}
}

func (p *ScriptedPolicy) Name() string { return "scripted" }

func (p *ScriptedPolicy) Action(e *env.Env) (int, error) {
	if p.next >= len(p.actions) {
		return 0, fmt.Errorf("script exhausted after %d actions", len(p.actions))
	}
	a := p.actions[p.next]
	p.next++
	return a, nil
}

// #endregion scripted-policy
