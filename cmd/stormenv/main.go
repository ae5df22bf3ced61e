// stormenv is the CLI over the explicit-MDP environment: inspect a
// model, roll it out with a policy, replay fixtures, export to SQLite.
//
// Usage:
//
//	stormenv inspect --manifest <run.yaml> | --tra <model.tra> [--rew ...] [--lab ...]
//	stormenv rollout --manifest <run.yaml> --policy <random|first|scripted> [--episodes N] [--horizon H]
//	stormenv replay  --fixture <fixture.json>
//	stormenv export  --manifest <run.yaml> --db <model.db>
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
