package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/eval"
	"github.com/danielpatrickdp/wneura/internal/logging"
	"github.com/danielpatrickdp/wneura/internal/replay"
	"github.com/danielpatrickdp/wneura/internal/state"
)

// versionScanLimit bounds the search for a run's committed version.
const versionScanLimit = 1000

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		runID   string
		outPath string
		actions int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a logged run as a replay fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if runID == "" {
				cur, err := store.GetCurrent()
				if err != nil {
					return fmt.Errorf("no --run and no active version: %w", err)
				}
				runID = cur.RunID
			}

			override := 0
			if cmd.Flags().Changed("actions") {
				override = actions
			}
			f, err := exportFixture(store, runID, override, opts.brainConfig())
			if err != nil {
				return err
			}
			data, err := jsonBytes(f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write fixture: %w", err)
			}
			xlog.Info("Fixture exported", "run", runID, "interactions", len(f.Interactions), "path", outPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&runID, "run", "", "Run ID (default: run of the active version)")
	f.StringVar(&outPath, "out", "", "Output fixture JSON path")
	f.IntVar(&actions, "actions", 1, "Size of the value table (default: as recorded with the run)")
	cmd.MarkFlagRequired("out")
	return cmd
}

// exportFixture rebuilds a logged run as a fixture. The engine configuration
// and start state come from the run's manifest; versions committed without one
// fall back to fallback and their parent version. actions > 0 overrides the
// recorded table size.
func exportFixture(store *state.Store, runID string, actions int, fallback config.BrainConfig) (*replay.Fixture, error) {
	entries, err := logging.ListSteps(store.DB(), runID, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("run %s has no logged steps", runID)
	}

	f := &replay.Fixture{
		Description: "exported run " + runID,
		Config: replay.FixtureConfig{
			Brain:   fallback,
			Actions: 1,
			Seed:    1,
		},
	}
	for _, e := range entries {
		id := fmt.Sprintf("step-%d", e.Step)
		f.Interactions = append(f.Interactions, replay.Interaction{
			ID:           id,
			Action:       e.Action,
			Reward:       e.Reward,
			StressSignal: e.StressSignal,
			StressPulse:  e.StressPulse,
			UseCortisol:  e.UseCortisol,
			ActionTaken:  true,
		})
		exp := replay.FixtureExpectedResult{ID: id, Action: e.Decision}
		if e.Decision == logging.DecisionAccept {
			v := e.NewValue
			exp.NewValue = &v
		}
		f.ExpectedResults = append(f.ExpectedResults, exp)
	}

	v, err := runVersion(store, runID)
	if err != nil {
		return nil, err
	}
	f.ExpectedStatus = string(eval.NewEvalHarness(eval.DefaultEvalConfig()).RecoveryStatus(v.Snapshot.Agency))

	var m runManifest
	if v.MetricsJSON != "" && json.Unmarshal([]byte(v.MetricsJSON), &m) == nil && m.Actions > 0 {
		f.Config.Brain = m.Brain
		f.Config.Gate = m.Gate
		f.Config.Actions = m.Actions
		f.Start = m.Start
		f.StartValues = m.StartValues
	} else {
		xlog.Warn("Run has no manifest, exporting with the current config", "run", runID, "version", v.VersionID)
		if v.ParentID != "" {
			parent, err := store.GetVersion(v.ParentID)
			if err != nil {
				return nil, err
			}
			f.Start = &parent.Snapshot
			f.StartValues = parent.Values
		}
	}
	if actions > 0 {
		f.Config.Actions = actions
	}
	return f, nil
}

// runVersion finds the version committed at the end of runID.
func runVersion(store *state.Store, runID string) (state.StateRecord, error) {
	versions, err := store.ListVersions(versionScanLimit)
	if err != nil {
		return state.StateRecord{}, err
	}
	for _, v := range versions {
		if v.RunID == runID {
			return v, nil
		}
	}
	return state.StateRecord{}, fmt.Errorf("run %s has no committed version", runID)
}
