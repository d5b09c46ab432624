package envserver

import "github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"

const ServiceName = "racesim.v1.EnvService"

// 各RPC的路径
const (
	CreateSessionProcedure = "/" + ServiceName + "/CreateSession"
	ResetProcedure         = "/" + ServiceName + "/Reset"
	StepProcedure          = "/" + ServiceName + "/Step"
	GetStateProcedure      = "/" + ServiceName + "/GetState"
	CloseSessionProcedure  = "/" + ServiceName + "/CloseSession"
)

type CreateSessionRequest struct {
	Seed uint64 `json:"seed"`
}

type CreateSessionResponse struct {
	SessionID string            `json:"session_id"`
	Result    entity.StepResult `json:"result"`
}

type ResetRequest struct {
	SessionID string `json:"session_id"`
	Seed      uint64 `json:"seed"`
}

type ResetResponse struct {
	Result entity.StepResult `json:"result"`
}

// StepRequest 单步推进请求，DT缺省时使用配置的固定步长
type StepRequest struct {
	SessionID string   `json:"session_id"`
	Steering  int      `json:"steering"`
	Throttle  int      `json:"throttle"`
	DT        *float64 `json:"dt,omitempty"`
}

type StepResponse struct {
	Result entity.StepResult `json:"result"`
}

type GetStateRequest struct {
	SessionID string `json:"session_id"`
}

type GetStateResponse struct {
	Result entity.StepResult `json:"result"`
}

type CloseSessionRequest struct {
	SessionID string `json:"session_id"`
}

type CloseSessionResponse struct{}
