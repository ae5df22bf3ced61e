package main

// #region imports
import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cancetinsoy/stormenv/internal/chart"
	"github.com/cancetinsoy/stormenv/internal/env"
	"github.com/cancetinsoy/stormenv/internal/logging"
	"github.com/cancetinsoy/stormenv/internal/rollout"
	"github.com/cancetinsoy/stormenv/internal/trajectory"
)

// #endregion imports

// #region command

var (
	rolloutModelFlags modelFlags
	rolloutPolicy     string
	rolloutActions    string
	rolloutEpisodes   int
	rolloutHorizon    int
	rolloutSeed       int64
	rolloutDBPath     string
	rolloutChartPath  string
)

var rolloutCmd = &cobra.Command{
	Use:   "rollout",
	Short: "Run policy-driven episodes over a loaded model",
	RunE:  runRollout,
}

func init() {
	rolloutModelFlags.register(rolloutCmd)
	rolloutCmd.Flags().StringVar(&rolloutPolicy, "policy", "random", "policy: random, first, or scripted")
	rolloutCmd.Flags().StringVar(&rolloutActions, "actions", "", "comma-separated action script for --policy=scripted")
	rolloutCmd.Flags().IntVar(&rolloutEpisodes, "episodes", 1, "number of episodes")
	rolloutCmd.Flags().IntVar(&rolloutHorizon, "horizon", 100, "steps per episode")
	rolloutCmd.Flags().Int64Var(&rolloutSeed, "seed", 0, "stepping seed (default: manifest seed, else wall clock)")
	rolloutCmd.Flags().StringVar(&rolloutDBPath, "db", "", "record the run into this SQLite database")
	rolloutCmd.Flags().StringVar(&rolloutChartPath, "chart", "", "write an HTML chart of episode returns to this path")
}

// #endregion command

// #region run

func runRollout(cmd *cobra.Command, args []string) error {
	model, m, err := rolloutModelFlags.load()
	if err != nil {
		return err
	}
	seed := resolveSeed(cmd, rolloutSeed, m)
	log := logging.New("rollout-cmd")

	var policy rollout.Policy
	switch rolloutPolicy {
	case "random":
		// Offset keeps policy draws independent of the env's stream.
		policy = rollout.NewRandomPolicy(seed + 1)
	case "first":
		policy = rollout.FirstActionPolicy{}
	case "scripted":
		actions, err := parseActionList(rolloutActions)
		if err != nil {
			return fmt.Errorf("--actions: %w", err)
		}
		policy = rollout.NewScriptedPolicy(actions)
	default:
		return fmt.Errorf("unknown policy %q", rolloutPolicy)
	}

	cfg := rollout.Config{
		Episodes: rolloutEpisodes,
		Horizon:  rolloutHorizon,
		Seed:     seed,
		Policy:   policy,
	}
	if rolloutDBPath != "" {
		store, err := trajectory.Open(rolloutDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Recorder = store
	}

	e := env.New(model, seed)
	runID, results, err := rollout.Run(e, cfg)
	if err != nil {
		return err
	}

	returns := make([]float64, 0, len(results))
	for _, r := range results {
		fmt.Printf("episode %3d: return %10.4f  final state %d\n", r.Episode, r.Return, r.FinalState)
		returns = append(returns, r.Return)
	}
	log.Info("rollout complete",
		"policy", policy.Name(),
		"seed", seed,
		"episodes", len(results),
		"run_id", runID,
	)

	if rolloutChartPath != "" {
		series := map[string][]float64{policy.Name(): returns}
		if err := chart.RenderReturns(rolloutChartPath, "episode returns", series); err != nil {
			return err
		}
		log.Info("chart written", "path", rolloutChartPath)
	}
	return nil
}

// #endregion run
