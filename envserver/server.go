// 远程环境服务：通过connect RPC向外部训练循环暴露独立的仿真会话
package envserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/task"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
)

// ErrSessionNotFound 会话不存在或已关闭
var ErrSessionNotFound = errors.New("session not found")

// session 一个独立的仿真会话，同一会话上的调用串行执行
type session struct {
	mu  sync.Mutex
	sim *task.Context
}

// Server 环境服务
// 功能：管理多个互不影响的仿真会话，不同会话可以并发推进
type Server struct {
	rc       *config.RuntimeConfig
	sessions *xsync.MapOf[string, *session]
}

// NewServer 创建新的服务器实例
func NewServer(rc *config.RuntimeConfig) *Server {
	return &Server{
		rc:       rc,
		sessions: xsync.NewMapOf[string, *session](),
	}
}

// Handler 注册全部RPC并返回HTTP处理器
func (s *Server) Handler() http.Handler {
	opts := []connect.HandlerOption{connect.WithCodec(Codec{})}
	mux := http.NewServeMux()
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, s.CreateSession, opts...))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, s.Reset, opts...))
	mux.Handle(StepProcedure, connect.NewUnaryHandler(StepProcedure, s.Step, opts...))
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, s.GetState, opts...))
	mux.Handle(CloseSessionProcedure, connect.NewUnaryHandler(CloseSessionProcedure, s.CloseSession, opts...))
	return mux
}

// RunServer 启动服务器
func RunServer(address string, rc *config.RuntimeConfig) error {
	log.Infof("Server listening at %v", address)
	return http.ListenAndServe(address, NewServer(rc).Handler())
}

// Sessions 当前会话数
func (s *Server) Sessions() int {
	return s.sessions.Size()
}

// CreateSession 创建会话并开始第一个episode
func (s *Server) CreateSession(
	ctx context.Context, req *connect.Request[CreateSessionRequest],
) (*connect.Response[CreateSessionResponse], error) {
	sim, err := task.NewContext(s.rc, req.Msg.Seed)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to create session: %w", err))
	}
	id := uuid.NewString()
	s.sessions.Store(id, &session{sim: sim})
	log.Infof("session %s created (seed %d), %d active", id, req.Msg.Seed, s.sessions.Size())
	return connect.NewResponse(&CreateSessionResponse{
		SessionID: id,
		Result:    sim.Snapshot(),
	}), nil
}

// Reset 在已有会话上开始新的episode
func (s *Server) Reset(
	ctx context.Context, req *connect.Request[ResetRequest],
) (*connect.Response[ResetResponse], error) {
	var result entity.StepResult
	err := s.with(req.Msg.SessionID, func(sim *task.Context) error {
		result = sim.Reset(req.Msg.Seed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ResetResponse{Result: result}), nil
}

// Step 推进一步
func (s *Server) Step(
	ctx context.Context, req *connect.Request[StepRequest],
) (*connect.Response[StepResponse], error) {
	var result entity.StepResult
	err := s.with(req.Msg.SessionID, func(sim *task.Context) (err error) {
		dt := sim.Clock().DT
		if req.Msg.DT != nil {
			dt = *req.Msg.DT
		}
		result, err = sim.Tick(dt, entity.Control{
			Steering: req.Msg.Steering,
			Throttle: req.Msg.Throttle,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&StepResponse{Result: result}), nil
}

// GetState 获取当前状态（不推进）
func (s *Server) GetState(
	ctx context.Context, req *connect.Request[GetStateRequest],
) (*connect.Response[GetStateResponse], error) {
	var result entity.StepResult
	err := s.with(req.Msg.SessionID, func(sim *task.Context) error {
		result = sim.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetStateResponse{Result: result}), nil
}

// CloseSession 关闭会话
func (s *Server) CloseSession(
	ctx context.Context, req *connect.Request[CloseSessionRequest],
) (*connect.Response[CloseSessionResponse], error) {
	if _, ok := s.sessions.LoadAndDelete(req.Msg.SessionID); !ok {
		return nil, notFound(req.Msg.SessionID)
	}
	log.Infof("session %s closed, %d active", req.Msg.SessionID, s.sessions.Size())
	return connect.NewResponse(&CloseSessionResponse{}), nil
}

// with 在会话锁内执行f，并把错误映射为connect错误码
func (s *Server) with(id string, f func(sim *task.Context) error) error {
	sess, ok := s.sessions.Load(id)
	if !ok {
		return notFound(id)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := f(sess.sim); err != nil {
		switch {
		case errors.Is(err, task.ErrEpisodeDone):
			return connect.NewError(connect.CodeFailedPrecondition, err)
		case task.IsInputError(err):
			return connect.NewError(connect.CodeInvalidArgument, err)
		default:
			return connect.NewError(connect.CodeInternal, err)
		}
	}
	return nil
}

func notFound(id string) error {
	return connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %q", ErrSessionNotFound, id))
}
