package task

import (
	"flag"
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity/vehicle"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 600, "心跳日志间隔步数（0表示关闭）")
)

// prepare 准备阶段，每步执行一次
// 功能：检查episode状态、时间步长与控制输入
// 说明：只做检查，不修改状态
func (ctx *Context) prepare(dt float64, c entity.Control) error {
	if ctx.done {
		return fmt.Errorf("%w: episode %s at step %d", ErrEpisodeDone, ctx.id, ctx.clock.InternalStep)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", vehicle.ErrInvalidDT, dt)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: got %v", vehicle.ErrInvalidInput, c)
	}
	return nil
}

// update 更新阶段，每步执行一次
// 算法说明：
// 1. 动力学：车辆按控制输入积分一步，失败时状态保持不变
// 2. 传感器：以新位姿对赛道边界重新测距
// 3. 提取：计算在轨状态与奖励
func (ctx *Context) update(dt float64, c entity.Control) error {
	if err := ctx.vehicle.Advance(dt, c.Steering, c.Throttle); err != nil {
		return err
	}
	ctx.extract()
	return nil
}

// extract 重算传感器并提取奖励
func (ctx *Context) extract() {
	boundary := ctx.track.Boundary()
	ctx.vehicle.RecomputeSensors(boundary)
	ctx.onTrack = ctx.track.Contains(ctx.vehicle.Position())
	ctx.reward = vehicle.Reward(ctx.vehicle, boundary, ctx.runtimeConfig.Reward)
}

// finish 收尾阶段：推进时钟、累计奖励、判定episode结束并输出心跳日志
func (ctx *Context) finish(dt float64) {
	ctx.clock.Advance(dt)
	ctx.ret += ctx.reward
	if !ctx.onTrack {
		ctx.offTrackSteps++
	}
	ctx.done = ctx.clock.Exhausted() ||
		(ctx.runtimeConfig.C.TerminateOffTrack && !ctx.onTrack)

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d(%v) episode=%s %v reward=%+.2f return=%+.2f",
			ctx.clock.InternalStep, ctx.clock,
			ctx.id, ctx.vehicle.Telemetry(), ctx.reward, ctx.ret,
		)
	}
	if ctx.done {
		log.Debugf("episode %s done at step %d, return %.2f", ctx.id, ctx.clock.InternalStep, ctx.ret)
	}
}
