// Package codec exposes one engine over gRPC and provides the matching client.
package codec

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mudler/xlog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/eval"
	"github.com/danielpatrickdp/wneura/internal/learner"
	"github.com/danielpatrickdp/wneura/internal/replay"
)

// #region server
// Server serializes every RPC onto a single engine.
type Server struct {
	mu     sync.Mutex
	engine *engine.Engine[json.RawMessage]
	eval   *eval.EvalHarness
}

// NewServer wraps e. The server takes ownership; callers must not step e
// directly afterwards.
func NewServer(e *engine.Engine[json.RawMessage], evalConfig eval.EvalConfig) *Server {
	return &Server{engine: e, eval: eval.NewEvalHarness(evalConfig)}
}

// ReplayRequest is the Replay RPC payload.
type ReplayRequest struct {
	Interactions []replay.Interaction `json:"interactions"`
}

// ReplayResponse is the Replay RPC result.
type ReplayResponse struct {
	Results []replay.Result `json:"results"`
	Summary replay.Summary  `json:"summary"`
}

// #endregion server

// #region rpc
func (s *Server) Step(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var inter replay.Interaction
	if err := fromStruct(in, &inter); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	report, err := s.engine.Step(engine.StepInput[json.RawMessage]{
		Action:       inter.Action,
		Reward:       inter.Reward,
		StressSignal: inter.StressSignal,
		UseCortisol:  inter.UseCortisol,
		StressPulse:  inter.StressPulse,
		ActionTaken:  inter.ActionTaken,
		State:        inter.State,
	})
	s.mu.Unlock()
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(report)
}

func (s *Server) Snapshot(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	snap := s.engine.Snapshot()
	s.mu.Unlock()
	return encode(snap)
}

func (s *Server) Health(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	health := s.engine.Health()
	s.mu.Unlock()
	return encode(s.eval.Run(health))
}

func (s *Server) Replay(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ReplayRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	results := replay.Replay(s.engine, req.Interactions)
	summary := replay.Summarize(results, s.engine.Snapshot())
	s.mu.Unlock()

	xlog.Info("Replay served", "total", summary.Total, "rejected", summary.Rejected)
	return encode(ReplayResponse{Results: results, Summary: summary})
}

// #endregion rpc

// #region errors
// toStatus maps engine sentinels onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, learner.ErrInvalidAction):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, bounds.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func encode(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion errors
