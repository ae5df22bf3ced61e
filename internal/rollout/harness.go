// Package rollout drives a loaded environment with a policy for a fixed
// number of horizon-bounded episodes, optionally recording every
// transition. The model has no terminal states, so the horizon is the
// only thing that ends an episode.
package rollout

// #region imports
import (
	"fmt"

	"github.com/cancetinsoy/stormenv/internal/env"
	"github.com/cancetinsoy/stormenv/internal/logging"
	"github.com/cancetinsoy/stormenv/internal/trajectory"
)

// #endregion imports

// #region types

// Recorder receives every transition of a run. *trajectory.Store
// satisfies it; nil disables recording.
type Recorder interface {
	BeginRun(seed int64, policy string, episodes int) (string, error)
	RecordStep(step trajectory.Step) error
}

// Config parametrizes one rollout run.
type Config struct {
	Episodes int   // defaults to 1
	Horizon  int   // steps per episode, defaults to 100
	Seed     int64 // recorded for reproducibility; the env is seeded by its owner
	Policy   Policy
	Recorder Recorder
}

// EpisodeResult summarizes one episode.
type EpisodeResult struct {
	Episode    int
	Steps      int
	Return     float64
	FinalState int
}

// #endregion types

// #region run

// Run executes cfg over e. It returns the recorder's run id (empty
// without a recorder) and one result per episode.
func Run(e *env.Env, cfg Config) (string, []EpisodeResult, error) {
	if cfg.Policy == nil {
		return "", nil, fmt.Errorf("rollout: nil policy")
	}
	if cfg.Episodes <= 0 {
		cfg.Episodes = 1
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 100
	}
	log := logging.New("rollout")

	runID := ""
	if cfg.Recorder != nil {
		id, err := cfg.Recorder.BeginRun(cfg.Seed, cfg.Policy.Name(), cfg.Episodes)
		if err != nil {
			return "", nil, fmt.Errorf("rollout: %w", err)
		}
		runID = id
	}

	results := make([]EpisodeResult, 0, cfg.Episodes)
	for episode := 0; episode < cfg.Episodes; episode++ {
		obs := e.Reset()
		state := obs.State()
		total := 0.0

		for step := 0; step < cfg.Horizon; step++ {
			action, err := cfg.Policy.Action(e)
			if err != nil {
				return runID, results, fmt.Errorf("rollout episode %d step %d: %w", episode, step, err)
			}
			res, err := e.Step(action)
			if err != nil {
				return runID, results, fmt.Errorf("rollout episode %d step %d: %w", episode, step, err)
			}
			next := res.Observation.State()
			total += res.Reward

			if cfg.Recorder != nil {
				record := trajectory.Step{
					RunID:     runID,
					Episode:   episode,
					Index:     step,
					State:     state,
					Action:    action,
					NextState: next,
					Reward:    res.Reward,
				}
				if err := cfg.Recorder.RecordStep(record); err != nil {
					return runID, results, fmt.Errorf("rollout episode %d step %d: %w", episode, step, err)
				}
			}
			state = next
		}

		log.Debug("episode done",
			"episode", episode,
			"steps", cfg.Horizon,
			"return", total,
			"final_state", state,
		)
		results = append(results, EpisodeResult{
			Episode:    episode,
			Steps:      cfg.Horizon,
			Return:     total,
			FinalState: state,
		})
	}

	return runID, results, nil
}

// #endregion run
