package main

// #region imports
import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"github.com/cancetinsoy/stormenv/internal/rollout"
)

// #endregion imports

// #region command

var replayFixturePath string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a JSON fixture and diff each step against expectations",
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayFixturePath, "fixture", "", "path to the fixture JSON")
	replayCmd.MarkFlagRequired("fixture")
}

// #endregion command

// #region run

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := rollout.LoadFixture(replayFixturePath)
	if err != nil {
		return err
	}
	if f.Description != "" {
		fmt.Println(f.Description)
	}

	results, err := rollout.RunFixture(f)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Match {
			fmt.Printf("step %3d: %s state %d reward %g\n", r.Index, aurora.Green("ok  "), r.Got.State, r.Got.Reward)
			continue
		}
		fmt.Printf("step %3d: %s got state %d reward %g, want state %d reward %g\n",
			r.Index, aurora.Red("FAIL"), r.Got.State, r.Got.Reward, r.Want.State, r.Want.Reward)
	}

	if n := rollout.Mismatches(results); n > 0 {
		return fmt.Errorf("%d of %d steps mismatched", n, len(results))
	}
	return nil
}

// #endregion run
