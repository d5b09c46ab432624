package envserver

import (
	"context"

	"connectrpc.com/connect"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
)

// Client 环境服务客户端
type Client struct {
	createSession *connect.Client[CreateSessionRequest, CreateSessionResponse]
	reset         *connect.Client[ResetRequest, ResetResponse]
	step          *connect.Client[StepRequest, StepResponse]
	getState      *connect.Client[GetStateRequest, GetStateResponse]
	closeSession  *connect.Client[CloseSessionRequest, CloseSessionResponse]
}

// NewClient 创建客户端，baseURL形如 http://localhost:51102
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	opt := connect.WithCodec(Codec{})
	return &Client{
		createSession: connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+CreateSessionProcedure, opt),
		reset:         connect.NewClient[ResetRequest, ResetResponse](httpClient, baseURL+ResetProcedure, opt),
		step:          connect.NewClient[StepRequest, StepResponse](httpClient, baseURL+StepProcedure, opt),
		getState:      connect.NewClient[GetStateRequest, GetStateResponse](httpClient, baseURL+GetStateProcedure, opt),
		closeSession:  connect.NewClient[CloseSessionRequest, CloseSessionResponse](httpClient, baseURL+CloseSessionProcedure, opt),
	}
}

func (c *Client) CreateSession(ctx context.Context, seed uint64) (string, entity.StepResult, error) {
	res, err := c.createSession.CallUnary(ctx, connect.NewRequest(&CreateSessionRequest{Seed: seed}))
	if err != nil {
		return "", entity.StepResult{}, err
	}
	return res.Msg.SessionID, res.Msg.Result, nil
}

func (c *Client) Reset(ctx context.Context, id string, seed uint64) (entity.StepResult, error) {
	res, err := c.reset.CallUnary(ctx, connect.NewRequest(&ResetRequest{SessionID: id, Seed: seed}))
	if err != nil {
		return entity.StepResult{}, err
	}
	return res.Msg.Result, nil
}

// Step 以服务端配置的固定步长推进一步
func (c *Client) Step(ctx context.Context, id string, control entity.Control) (entity.StepResult, error) {
	return c.call(ctx, &StepRequest{SessionID: id, Steering: control.Steering, Throttle: control.Throttle})
}

// StepDT 以指定步长dt推进一步
func (c *Client) StepDT(ctx context.Context, id string, dt float64, control entity.Control) (entity.StepResult, error) {
	return c.call(ctx, &StepRequest{SessionID: id, Steering: control.Steering, Throttle: control.Throttle, DT: &dt})
}

func (c *Client) call(ctx context.Context, req *StepRequest) (entity.StepResult, error) {
	res, err := c.step.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return entity.StepResult{}, err
	}
	return res.Msg.Result, nil
}

func (c *Client) GetState(ctx context.Context, id string) (entity.StepResult, error) {
	res, err := c.getState.CallUnary(ctx, connect.NewRequest(&GetStateRequest{SessionID: id}))
	if err != nil {
		return entity.StepResult{}, err
	}
	return res.Msg.Result, nil
}

func (c *Client) CloseSession(ctx context.Context, id string) error {
	_, err := c.closeSession.CallUnary(ctx, connect.NewRequest(&CloseSessionRequest{SessionID: id}))
	return err
}
