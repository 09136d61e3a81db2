package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/codec"
	"github.com/danielpatrickdp/wneura/internal/replay"
)

type remoteOptions struct {
	addr    string
	timeout time.Duration
}

func (o *remoteOptions) dial(cmd *cobra.Command) (*codec.Client, context.Context, context.CancelFunc, error) {
	client, err := codec.NewClient(addrOrEnv(o.addr))
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	return client, ctx, cancel, nil
}

func newRemoteCmd() *cobra.Command {
	opts := &remoteOptions{}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running engine server",
	}
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", "", "Server address (default: $"+envAddr+" or "+defaultAddr+")")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per-call timeout")

	cmd.AddCommand(
		newRemoteStepCmd(opts),
		newRemoteSnapshotCmd(opts),
		newRemoteHealthCmd(opts),
		newRemoteReplayCmd(opts),
	)
	return cmd
}

func newRemoteStepCmd(opts *remoteOptions) *cobra.Command {
	var in replay.Interaction

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Advance the remote engine by one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			report, err := client.Step(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	f := cmd.Flags()
	f.IntVar(&in.Action, "action", 0, "Action index")
	f.Float64Var(&in.Reward, "reward", 0, "Reward signal")
	f.Float64Var(&in.StressSignal, "stress", 0, "Stress signal for chemistry")
	f.Float64Var(&in.StressPulse, "stress-pulse", 0, "Extra surprise fed to the stress state after learning")
	f.BoolVar(&in.UseCortisol, "use-cortisol", false, "Drive chemistry with cortisol instead of --stress")
	f.BoolVar(&in.ActionTaken, "action-taken", true, "Whether the agent acted this step")
	return cmd
}

func newRemoteSnapshotCmd(opts *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the remote engine's biological state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			snap, err := client.Snapshot(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newRemoteHealthCmd(opts *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Evaluate the remote engine's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			res, err := client.Health(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newRemoteReplayCmd(opts *remoteOptions) *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Send a fixture's interactions to the remote engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			client, ctx, cancel, err := opts.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			out, err := client.Replay(ctx, f.Interactions)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Fixture JSON file")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
