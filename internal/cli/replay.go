package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/replay"
)

// newValueTolerance absorbs float rounding in fixture golden values.
const newValueTolerance = 1e-9

type replayOutput struct {
	Description string          `json:"description,omitempty"`
	Summary     replay.Summary  `json:"summary"`
	Results     []replay.Result `json:"results"`
	Mismatches  []string        `json:"mismatches,omitempty"`
}

func newReplayCmd() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a JSON fixture through a fresh engine and check expected outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			e, err := f.NewEngine()
			if err != nil {
				return err
			}

			results := replay.Replay(e, f.Interactions)
			out := replayOutput{
				Description: f.Description,
				Summary:     replay.Summarize(results, e.Snapshot()),
				Results:     results,
				Mismatches:  checkExpected(f, results),
			}
			if f.ExpectedStatus != "" && string(out.Summary.Status) != f.ExpectedStatus {
				out.Mismatches = append(out.Mismatches,
					fmt.Sprintf("status: expected %s, got %s", f.ExpectedStatus, out.Summary.Status))
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if len(out.Mismatches) > 0 {
				return fmt.Errorf("replay: %d mismatches", len(out.Mismatches))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Fixture JSON file")
	cmd.MarkFlagRequired("fixture")
	return cmd
}

func checkExpected(f *replay.Fixture, results []replay.Result) []string {
	var out []string
	if len(f.ExpectedResults) > 0 && len(f.ExpectedResults) != len(results) {
		out = append(out, fmt.Sprintf("expected %d results, got %d", len(f.ExpectedResults), len(results)))
		return out
	}
	for i, exp := range f.ExpectedResults {
		got := results[i]
		if exp.ID != got.ID {
			out = append(out, fmt.Sprintf("%d: expected id %s, got %s", i, exp.ID, got.ID))
		}
		if exp.Action != got.Action {
			out = append(out, fmt.Sprintf("%s: expected %s, got %s (%s)", exp.ID, exp.Action, got.Action, got.Reason))
			continue
		}
		if exp.NewValue != nil && got.Report != nil &&
			math.Abs(got.Report.Learner.NewValue-*exp.NewValue) > newValueTolerance {
			out = append(out, fmt.Sprintf("%s: expected new_value %v, got %v", exp.ID, *exp.NewValue, got.Report.Learner.NewValue))
		}
	}
	return out
}
