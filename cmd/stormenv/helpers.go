package main

// #region imports
import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cancetinsoy/stormenv/internal/explicit"
	"github.com/cancetinsoy/stormenv/internal/manifest"
)

// #endregion imports

// #region model-flags

// modelFlags is the shared --manifest / --tra / --rew / --lab / --strict
// flag set used by every subcommand that loads a model.
type modelFlags struct {
	manifestPath string
	tra          string
	rew          string
	lab          string
	strict       bool
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.manifestPath, "manifest", "", "path to a YAML/JSON run manifest")
	cmd.Flags().StringVar(&f.tra, "tra", "", "path to the .tra transition file")
	cmd.Flags().StringVar(&f.rew, "rew", "", "path to the optional .tra.rew reward file")
	cmd.Flags().StringVar(&f.lab, "lab", "", "path to the optional .lab label file")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject lines with the wrong field count instead of skipping them")
}

// load resolves flags into a loaded model. The manifest, when given, is
// the source of paths and options; explicit path flags win over nothing,
// not over the manifest.
func (f *modelFlags) load() (*explicit.Model, *manifest.Manifest, error) {
	if f.manifestPath != "" {
		m, err := manifest.LoadFromPath(f.manifestPath)
		if err != nil {
			return nil, nil, err
		}
		model, err := explicit.Load(m.Paths(), m.Options())
		if err != nil {
			return nil, nil, err
		}
		return model, m, nil
	}
	if f.tra == "" {
		return nil, nil, fmt.Errorf("either --manifest or --tra is required")
	}
	paths := explicit.Paths{Tra: f.tra, Rew: f.rew, Lab: f.lab}
	model, err := explicit.Load(paths, explicit.Options{Strict: f.strict})
	if err != nil {
		return nil, nil, err
	}
	return model, nil, nil
}

// #endregion model-flags

// #region seed

// resolveSeed picks the stepping seed: an explicitly set flag wins, then
// the manifest, then the wall clock.
func resolveSeed(cmd *cobra.Command, flagValue int64, m *manifest.Manifest) int64 {
	if cmd.Flags().Changed("seed") {
		return flagValue
	}
	if m != nil && m.Seed != nil {
		return *m.Seed
	}
	return time.Now().UnixNano()
}

// #endregion seed

// #region parse-actions

// parseActionList parses a comma-separated action script, e.g. "0,1,0".
func parseActionList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty action script")
	}
	parts := strings.Split(s, ",")
	actions := make([]int, 0, len(parts))
	for _, part := range parts {
		a, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", part, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// #endregion parse-actions
