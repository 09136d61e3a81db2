package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/wneura/internal/codec"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/eval"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		actions int
		seed    int64
		resume  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one engine over gRPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := engine.DefaultConfig()
			cfg.Brain = opts.brainConfig()
			cfg.Actions = actions
			cfg.Seed = seed
			e, err := engine.New[json.RawMessage](cfg)
			if err != nil {
				return err
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			var from origin
			if store != nil {
				defer store.Close()
				if resume {
					cur, err := store.GetCurrent()
					if err != nil {
						return fmt.Errorf("resume: %w", err)
					}
					if err := e.Restore(cur.Snapshot, cur.Values); err != nil {
						return fmt.Errorf("resume %s: %w", cur.VersionID, err)
					}
					snap := cur.Snapshot
					from = origin{parentID: cur.VersionID, start: &snap, startValues: cur.Values}
					xlog.Info("Resumed engine", "version", cur.VersionID)
				}
			} else if resume {
				return errNoDB
			}

			lis, err := net.Listen("tcp", addrOrEnv(addr))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			evalCfg := eval.DefaultEvalConfig()
			srv := grpc.NewServer()
			codec.RegisterEngineServiceServer(srv, codec.NewServer(e, evalCfg))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				srv.GracefulStop()
			}()

			xlog.Info("Engine server listening", "addr", lis.Addr().String(), "actions", actions)
			if err := srv.Serve(lis); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			xlog.Info("Engine server stopped", "steps", e.StepCount())

			if store != nil {
				rec, err := persist(store, uuid.New().String(), from, e, eval.NewEvalHarness(evalCfg).Run(e.Health()))
				if err != nil {
					return err
				}
				xlog.Info("Engine state committed", "version", rec.VersionID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "Listen address (default: $"+envAddr+" or "+defaultAddr+")")
	f.IntVar(&actions, "actions", 2, "Size of the value table")
	f.Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	f.BoolVar(&resume, "resume", false, "Start from the active snapshot in --db")
	return cmd
}
