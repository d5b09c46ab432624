package entity

import (
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/clock"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
)

// task/task.go的依赖倒置
// 一个ITaskContext对应一个独立的单车仿真，所有方法都不可并发调用
type ITaskContext interface {
	ID() string // 当前episode ID
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig

	// 开始新的episode，返回初始状态
	Reset(seed uint64) StepResult
	// 推进一步：动力学 -> 传感器 -> 观测与奖励
	Tick(dt float64, c Control) (StepResult, error)
	// 当前状态（不推进）
	Snapshot() StepResult
}

// entity/driver的依赖倒置
type IDriver interface {
	Name() string
	// 根据上一步的观测给出本步控制输入
	Decide(obs Observation) Control
}
