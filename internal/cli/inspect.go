package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/logging"
	"github.com/danielpatrickdp/wneura/internal/state"
)

type versionRow struct {
	VersionID string          `json:"version_id"`
	ParentID  string          `json:"parent_id,omitempty"`
	RunID     string          `json:"run_id,omitempty"`
	Step      int             `json:"step"`
	Snapshot  brain.Snapshot  `json:"snapshot"`
	Values    []float64       `json:"values,omitempty"`
	Metrics   json.RawMessage `json:"metrics,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type stepRow struct {
	Step            int     `json:"step"`
	Phase           string  `json:"phase,omitempty"`
	Decision        string  `json:"decision"`
	Reason          string  `json:"reason,omitempty"`
	Action          int     `json:"action"`
	Reward          float64 `json:"reward"`
	PredictionError float64 `json:"rpe"`
	Cortisol        float64 `json:"cortisol"`
	Agency          float64 `json:"agency"`
	ReceptorHealth  float64 `json:"receptor_health"`
	Encoded         bool    `json:"encoded"`
}

type traceRow struct {
	TraceID    string          `json:"trace_id"`
	Step       int             `json:"step"`
	Reward     float64         `json:"reward"`
	Surprise   float64         `json:"surprise"`
	Cortisol   float64         `json:"cortisol"`
	Importance float64         `json:"importance"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type versionDetail struct {
	Version versionRow `json:"version"`
	Traces  []traceRow `json:"traces"`
	Steps   []stepRow  `json:"steps,omitempty"`
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var (
		last    int
		version string
		steps   int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored snapshot versions, or show one with its traces and step log",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if version != "" {
				detail, err := inspectVersion(store, version, steps)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), detail)
			}

			versions, err := store.ListVersions(last)
			if err != nil {
				return err
			}
			rows := make([]versionRow, len(versions))
			for i, v := range versions {
				rows[i] = toVersionRow(v)
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}

	f := cmd.Flags()
	f.IntVar(&last, "last", 20, "Show N most recent versions")
	f.StringVar(&version, "version", "", "Show a single version with its traces")
	f.IntVar(&steps, "steps", 50, "With --version: show the last N step log rows of its run")
	return cmd
}

func inspectVersion(store *state.Store, id string, steps int) (versionDetail, error) {
	rec, err := store.GetVersion(id)
	if err != nil {
		return versionDetail{}, err
	}
	traces, err := store.ListTraces(id)
	if err != nil {
		return versionDetail{}, err
	}

	detail := versionDetail{Version: toVersionRow(rec), Traces: make([]traceRow, len(traces))}
	for i, tr := range traces {
		detail.Traces[i] = traceRow{
			TraceID:    tr.TraceID,
			Step:       tr.Step,
			Reward:     tr.Reward,
			Surprise:   tr.Surprise,
			Cortisol:   tr.Cortisol,
			Importance: tr.Importance,
			Payload:    rawOrNil(tr.PayloadJSON),
		}
	}

	if rec.RunID != "" && steps > 0 {
		entries, err := logging.ListSteps(store.DB(), rec.RunID, steps)
		if err != nil {
			return versionDetail{}, fmt.Errorf("step log: %w", err)
		}
		for _, e := range entries {
			detail.Steps = append(detail.Steps, stepRow{
				Step:            e.Step,
				Phase:           e.Phase,
				Decision:        e.Decision,
				Reason:          e.Reason,
				Action:          e.Action,
				Reward:          e.Reward,
				PredictionError: e.PredictionError,
				Cortisol:        e.Cortisol,
				Agency:          e.Agency,
				ReceptorHealth:  e.ReceptorHealth,
				Encoded:         e.Encoded,
			})
		}
	}
	return detail, nil
}

func toVersionRow(rec state.StateRecord) versionRow {
	return versionRow{
		VersionID: rec.VersionID,
		ParentID:  rec.ParentID,
		RunID:     rec.RunID,
		Step:      rec.Step,
		Snapshot:  rec.Snapshot,
		Values:    rec.Values,
		Metrics:   rawOrNil(rec.MetricsJSON),
		CreatedAt: rec.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func rawOrNil(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
