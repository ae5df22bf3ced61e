package explicit

// #region imports
import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

// #endregion imports

// #region options

// sumTolerance is how far a (state, action) probability sum may drift
// from 1.0 before the normalization pass rescales it.
const sumTolerance = 1e-10

// Paths names the three source files. Tra is required; Rew and Lab may be
// empty or point at files that do not exist.
type Paths struct {
	Tra string
	Rew string
	Lab string
}

// Options controls loader tolerance.
type Options struct {
	// Strict turns wrong-field-count lines into errors instead of
	// silently discarding them.
	Strict bool
}

// #endregion options

// #region load

// Load parses the named files and returns the finished Model. A missing
// reward or label file is skipped; a missing transition file is an error.
func Load(paths Paths, opts Options) (*Model, error) {
	tra, err := os.Open(paths.Tra)
	if err != nil {
		return nil, fmt.Errorf("open transitions: %w", err)
	}
	defer tra.Close()

	var rew, lab io.Reader
	if paths.Rew != "" {
		f, err := os.Open(paths.Rew)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// optional source, rewards stay empty
		case err != nil:
			return nil, fmt.Errorf("open rewards: %w", err)
		default:
			defer f.Close()
			rew = f
		}
	}
	if paths.Lab != "" {
		f, err := os.Open(paths.Lab)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// optional source, fall through to min-state resolution
		case err != nil:
			return nil, fmt.Errorf("open labels: %w", err)
		default:
			defer f.Close()
			lab = f
		}
	}

	return Parse(tra, rew, lab, opts)
}

// Parse builds a Model from in-memory sources. rew and lab may be nil,
// with the same defaulting rules as a missing file.
func Parse(tra, rew, lab io.Reader, opts Options) (*Model, error) {
	transitions, stateSet, err := parseTransitions(tra, opts.Strict)
	if err != nil {
		return nil, err
	}

	rewards := map[RewardKey]float64{}
	if rew != nil {
		rewards, err = parseRewards(rew, opts.Strict)
		if err != nil {
			return nil, err
		}
	}

	var initCandidates []int
	if lab != nil {
		initCandidates, err = parseLabels(lab)
		if err != nil {
			return nil, err
		}
	}

	return finalize(transitions, stateSet, rewards, initCandidates), nil
}

// #endregion load

// #region parse-transitions

// parseTransitions consumes the .tra format: an optional bare "mdp" tag
// line (case-insensitive), "#" comments, blanks, then records of
// "src action dest prob". Lines with any other field count are discarded
// unless strict is set.
func parseTransitions(r io.Reader, strict bool) (map[TransKey][]Outcome, map[int]struct{}, error) {
	transitions := map[TransKey][]Outcome{}
	states := map[int]struct{}{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.EqualFold(line, "mdp") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			if strict {
				return nil, nil, fmt.Errorf("parse transitions: line %q: want 4 fields, got %d", line, len(fields))
			}
			continue
		}
		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("parse transitions: line %q: %w", line, err)
		}
		action, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, nil, fmt.Errorf("parse transitions: line %q: %w", line, err)
		}
		dest, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, nil, fmt.Errorf("parse transitions: line %q: %w", line, err)
		}
		prob, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse transitions: line %q: %w", line, err)
		}

		states[src] = struct{}{}
		states[dest] = struct{}{}
		key := TransKey{State: src, Action: action}
		transitions[key] = append(transitions[key], Outcome{Dest: dest, Prob: prob})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read transitions: %w", err)
	}
	return transitions, states, nil
}

// #endregion parse-transitions

// #region parse-rewards

// parseRewards consumes the .tra.rew format: records of
// "src action dest reward", with the same comment/blank/field-count
// tolerance as transitions.
func parseRewards(r io.Reader, strict bool) (map[RewardKey]float64, error) {
	rewards := map[RewardKey]float64{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			if strict {
				return nil, fmt.Errorf("parse rewards: line %q: want 4 fields, got %d", line, len(fields))
			}
			continue
		}
		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parse rewards: line %q: %w", line, err)
		}
		action, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("parse rewards: line %q: %w", line, err)
		}
		dest, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("parse rewards: line %q: %w", line, err)
		}
		reward, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse rewards: line %q: %w", line, err)
		}
		rewards[RewardKey{State: src, Action: action, Dest: dest}] = reward
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}
	return rewards, nil
}

// #endregion parse-rewards

// #region parse-labels

// parseLabels consumes the .lab format: an optional #DECLARATION ... #END
// block whose body is ignored (label names are not needed), then lines of
// "<state> <label> [<label> ...]". It returns every state labeled "init".
func parseLabels(r io.Reader) ([]int, error) {
	var candidates []int
	inDeclaration := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#DECLARATION") {
			inDeclaration = true
			continue
		}
		if inDeclaration {
			if strings.HasPrefix(line, "#END") {
				inDeclaration = false
			}
			continue
		}
		fields := strings.Fields(line)
		state, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parse labels: line %q: %w", line, err)
		}
		for _, label := range fields[1:] {
			if label == "init" {
				candidates = append(candidates, state)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return candidates, nil
}

// #endregion parse-labels

// #region finalize

// finalize derives the per-state action lists, normalizes every outcome
// distribution, and resolves the initial state.
func finalize(transitions map[TransKey][]Outcome, stateSet map[int]struct{}, rewards map[RewardKey]float64, initCandidates []int) *Model {
	states := make([]int, 0, len(stateSet))
	for s := range stateSet {
		states = append(states, s)
	}
	sort.Ints(states)

	actionSets := map[int]map[int]struct{}{}
	for key := range transitions {
		set, ok := actionSets[key.State]
		if !ok {
			set = map[int]struct{}{}
			actionSets[key.State] = set
		}
		set[key.Action] = struct{}{}
	}
	actionsByState := make(map[int][]int, len(actionSets))
	for s, set := range actionSets {
		actions := make([]int, 0, len(set))
		for a := range set {
			actions = append(actions, a)
		}
		sort.Ints(actions)
		actionsByState[s] = actions
	}

	for key, outcomes := range transitions {
		transitions[key] = normalize(outcomes)
	}

	initial := 0
	switch {
	case len(initCandidates) > 0:
		// multiple "init" labels: pick the smallest id
		initial = initCandidates[0]
		for _, s := range initCandidates[1:] {
			if s < initial {
				initial = s
			}
		}
	case len(states) > 0:
		initial = states[0]
	}

	return &Model{
		States:         states,
		Transitions:    transitions,
		Rewards:        rewards,
		ActionsByState: actionsByState,
		InitialState:   initial,
	}
}

// normalize rescales a distribution whose sum drifted from 1.0. A
// non-positive sum is degenerate input and becomes a uniform distribution
// over the same destinations, in the same order.
func normalize(outcomes []Outcome) []Outcome {
	total := 0.0
	for _, o := range outcomes {
		total += o.Prob
	}
	switch {
	case total <= 0:
		if len(outcomes) == 0 {
			return outcomes
		}
		p := 1.0 / float64(len(outcomes))
		scaled := make([]Outcome, len(outcomes))
		for i, o := range outcomes {
			scaled[i] = Outcome{Dest: o.Dest, Prob: p}
		}
		return scaled
	case total < 1-sumTolerance || total > 1+sumTolerance:
		scaled := make([]Outcome, len(outcomes))
		for i, o := range outcomes {
			scaled[i] = Outcome{Dest: o.Dest, Prob: o.Prob / total}
		}
		return scaled
	default:
		return outcomes
	}
}

// #endregion finalize
