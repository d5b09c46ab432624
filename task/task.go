package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/clock"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次单车仿真的所有变量和状态（时钟、赛道、车辆、随机数引擎），替代全局变量
// 说明：单线程使用；不同Context之间不共享可变状态，可以并行运行
type Context struct {
	// 当前episode ID
	id string
	// 当前episode使用的种子
	seed uint64

	// 时钟
	clock *clock.Clock
	// 运行时配置
	runtimeConfig *config.RuntimeConfig

	// 赛道
	track *track.Track
	// 车辆，每个episode重新创建
	vehicle *vehicle.Vehicle

	// 最近一步的输出

	reward  float64
	onTrack bool
	done    bool
	// 本episode累计奖励
	ret float64
	// 本episode出界步数
	offTrackSteps int32
}

var _ entity.ITaskContext = (*Context)(nil)

// NewContext 创建新的仿真任务上下文
// 功能：初始化时钟、赛道，并以seed开始第一个episode
// 参数：rc-运行时配置，seed-第一个episode的种子
// 返回：上下文；车辆参数不合法时返回包装config.ErrInvalidConfig的错误
func NewContext(rc *config.RuntimeConfig, seed uint64) (*Context, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: nil runtime config", config.ErrInvalidConfig)
	}
	ctx := &Context{
		clock:         clock.New(rc.C.Step),
		runtimeConfig: rc,
		track:         track.New(rc),
	}
	if err := ctx.reset(seed); err != nil {
		return nil, err
	}
	log.Debugf("context created: %v, episode %s", ctx.track, ctx.id)
	return ctx, nil
}

func (ctx *Context) ID() string                           { return ctx.id }
func (ctx *Context) Seed() uint64                         { return ctx.seed }
func (ctx *Context) Clock() *clock.Clock                  { return ctx.clock }
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig { return ctx.runtimeConfig }
func (ctx *Context) Track() *track.Track                  { return ctx.track }
func (ctx *Context) Vehicle() *vehicle.Vehicle            { return ctx.vehicle }
func (ctx *Context) Done() bool                           { return ctx.done }
func (ctx *Context) Return() float64                      { return ctx.ret }
func (ctx *Context) OffTrackSteps() int32                 { return ctx.offTrackSteps }

// Reset 开始新的episode
// 功能：生成新的episode ID，按seed重建随机数引擎，在出生点创建静止车辆并计算初始读数
// 返回：初始状态（Step为0）
func (ctx *Context) Reset(seed uint64) entity.StepResult {
	if err := ctx.reset(seed); err != nil {
		// 配置已在NewContext中校验，不应出现
		log.Panicf("reset episode: %v", err)
	}
	return ctx.Snapshot()
}

// ResetPose 以指定位姿开始新的episode（用于场景复现与测试）
// 说明：位姿不合法时返回错误，当前episode保持不变
func (ctx *Context) ResetPose(seed uint64, pose entity.Pose) (entity.StepResult, error) {
	v, err := ctx.spawn(seed)
	if err != nil {
		return entity.StepResult{}, err
	}
	if err := v.SetPose(pose); err != nil {
		return entity.StepResult{}, err
	}
	ctx.begin(seed, v)
	return ctx.Snapshot(), nil
}

func (ctx *Context) reset(seed uint64) error {
	v, err := ctx.spawn(seed)
	if err != nil {
		return err
	}
	ctx.begin(seed, v)
	return nil
}

// spawn 在出生点创建新车辆，不修改上下文
func (ctx *Context) spawn(seed uint64) (*vehicle.Vehicle, error) {
	rc := ctx.runtimeConfig
	// 每个episode按种子重建随机数引擎，保证可复现
	start := ctx.track.Spawn(randengine.New(seed), rc.C.SpawnJitter)
	return vehicle.New(rc.Vehicle, rc.Sensor, rc.World, start, 0)
}

// begin 以车辆v开始新的episode
func (ctx *Context) begin(seed uint64, v *vehicle.Vehicle) {
	ctx.id = uuid.NewString()
	ctx.seed = seed
	ctx.vehicle = v
	ctx.clock.Init()
	ctx.done = false
	ctx.ret = 0
	ctx.offTrackSteps = 0
	ctx.extract()
}

// Tick 推进一步，是驱动仿真的唯一入口
// 功能：依次执行动力学积分、传感器重算、观测与奖励提取，然后推进时钟
// 参数：dt-时间步长（秒，>0，通常为Clock().DT）；c-控制输入
// 返回：本步输出；输入不合法或episode已结束时返回错误，且不修改任何状态
func (ctx *Context) Tick(dt float64, c entity.Control) (entity.StepResult, error) {
	if err := ctx.prepare(dt, c); err != nil {
		return entity.StepResult{}, err
	}
	if err := ctx.update(dt, c); err != nil {
		return entity.StepResult{}, err
	}
	ctx.finish(dt)
	return ctx.Snapshot(), nil
}

// Snapshot 当前状态（不推进）
func (ctx *Context) Snapshot() entity.StepResult {
	v := ctx.vehicle
	return entity.StepResult{
		EpisodeID:   ctx.id,
		Step:        ctx.clock.InternalStep,
		T:           ctx.clock.T,
		Pose:        v.Pose(),
		Sensors:     v.Sensors(),
		Wheels:      v.Wheels(),
		Observation: v.Observe(),
		Reward:      ctx.reward,
		OnTrack:     ctx.onTrack,
		Done:        ctx.done,
	}
}

// IsInputError 错误是否由调用方输入引起（而非内部状态）
func IsInputError(err error) bool {
	return errors.Is(err, vehicle.ErrInvalidDT) ||
		errors.Is(err, vehicle.ErrInvalidInput) ||
		errors.Is(err, vehicle.ErrNonFinite) ||
		errors.Is(err, ErrEpisodeDone)
}
