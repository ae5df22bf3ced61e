package main

// #region imports
import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"github.com/cancetinsoy/stormenv/internal/check"
	"github.com/cancetinsoy/stormenv/internal/env"
)

// #endregion imports

// #region command

var inspectFlags modelFlags

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load a model and print its summary and validation checks",
	RunE:  runInspect,
}

func init() {
	inspectFlags.register(inspectCmd)
}

// #endregion command

// #region run

func runInspect(cmd *cobra.Command, args []string) error {
	model, _, err := inspectFlags.load()
	if err != nil {
		return err
	}

	e := env.New(model, 0) // seed irrelevant, nothing is stepped
	summary := e.Summary()

	fmt.Printf("Initial state: %s\n", aurora.Green(fmt.Sprintf("%d", summary.InitialState)))
	fmt.Printf("States:        %d\n", len(summary.States))
	fmt.Printf("Transitions:   %d\n", summary.NumTransitions)
	fmt.Println("Actions:")
	for _, s := range summary.States {
		actions := summary.ActionsByState[s]
		if len(actions) == 0 {
			fmt.Printf("  %4d: %s\n", s, aurora.Blue("(absorbing)"))
			continue
		}
		fmt.Printf("  %4d: %v\n", s, actions)
	}

	result := check.Verify(model)
	fmt.Println("Checks:")
	for _, metric := range result.Metrics {
		status := aurora.Green("ok")
		if !metric.Pass {
			status = aurora.Red("FAIL")
		}
		fmt.Printf("  %-24s %-12.6g %s\n", metric.Name, metric.Value, status)
	}
	if !result.Passed {
		for _, failure := range result.Failures {
			fmt.Printf("  %s %s\n", aurora.Red("!"), failure)
		}
		return fmt.Errorf("model failed %d check(s)", len(result.Failures))
	}
	return nil
}

// #endregion run
