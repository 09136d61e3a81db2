package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/eval"
	"github.com/danielpatrickdp/wneura/internal/replay"
)

// #region client-struct
// Client wraps the gRPC connection to a remote engine.
type Client struct {
	conn   *grpc.ClientConn
	client EngineServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to an engine server.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewEngineServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc EngineServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region step
// Step advances the remote engine by one interaction.
func (c *Client) Step(ctx context.Context, in replay.Interaction) (engine.StepReport, error) {
	req, err := toStruct(in)
	if err != nil {
		return engine.StepReport{}, fmt.Errorf("step rpc: %w", err)
	}
	resp, err := c.client.Step(ctx, req)
	if err != nil {
		return engine.StepReport{}, fmt.Errorf("step rpc: %w", err)
	}
	var report engine.StepReport
	if err := fromStruct(resp, &report); err != nil {
		return engine.StepReport{}, fmt.Errorf("step rpc: %w", err)
	}
	return report, nil
}

// #endregion step

// #region snapshot
// Snapshot fetches the remote engine's biological state.
func (c *Client) Snapshot(ctx context.Context) (brain.Snapshot, error) {
	resp, err := c.client.Snapshot(ctx, &emptypb.Empty{})
	if err != nil {
		return brain.Snapshot{}, fmt.Errorf("snapshot rpc: %w", err)
	}
	var snap brain.Snapshot
	if err := fromStruct(resp, &snap); err != nil {
		return brain.Snapshot{}, fmt.Errorf("snapshot rpc: %w", err)
	}
	return snap, nil
}

// #endregion snapshot

// #region health
// Health runs the server's eval harness against the current state.
func (c *Client) Health(ctx context.Context) (eval.EvalResult, error) {
	resp, err := c.client.Health(ctx, &emptypb.Empty{})
	if err != nil {
		return eval.EvalResult{}, fmt.Errorf("health rpc: %w", err)
	}
	var res eval.EvalResult
	if err := fromStruct(resp, &res); err != nil {
		return eval.EvalResult{}, fmt.Errorf("health rpc: %w", err)
	}
	return res, nil
}

// #endregion health

// #region replay
// Replay sends a batch of interactions to be stepped in order.
func (c *Client) Replay(ctx context.Context, interactions []replay.Interaction) (ReplayResponse, error) {
	req, err := toStruct(ReplayRequest{Interactions: interactions})
	if err != nil {
		return ReplayResponse{}, fmt.Errorf("replay rpc: %w", err)
	}
	resp, err := c.client.Replay(ctx, req)
	if err != nil {
		return ReplayResponse{}, fmt.Errorf("replay rpc: %w", err)
	}
	var out ReplayResponse
	if err := fromStruct(resp, &out); err != nil {
		return ReplayResponse{}, fmt.Errorf("replay rpc: %w", err)
	}
	return out, nil
}

// #endregion replay
