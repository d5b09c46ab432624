// 赛道：世界范围、赛道边界与奖励规则
package track

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/randengine"
)

// Track 赛道
// 功能：持有世界矩形与赛道边界，episode内不可变
type Track struct {
	world    geometry.Rect
	boundary geometry.Rect
	rewards  config.Reward
}

// New 根据运行时配置创建赛道
func New(rc *config.RuntimeConfig) *Track {
	return &Track{
		world:    rc.World,
		boundary: rc.Track,
		rewards:  rc.Reward,
	}
}

func (t *Track) World() geometry.Rect    { return t.world }
func (t *Track) Boundary() geometry.Rect { return t.boundary }

// Contains 点是否在赛道内（左闭右开）
func (t *Track) Contains(p geometry.Point) bool {
	return t.boundary.Contains(p)
}

// Reward 位置p的单步奖励
func (t *Track) Reward(p geometry.Point) float64 {
	return Reward(t.boundary, p, t.rewards)
}

// Spawn 生成出生点
// 功能：以世界中心为基准，在每个轴上加 [-jitter, jitter) 的均匀扰动，结果截断到世界范围
// 参数：engine-随机数引擎（jitter为0时可为nil），jitter-扰动幅度
func (t *Track) Spawn(engine *randengine.Engine, jitter float64) geometry.Point {
	p := t.world.Center()
	if jitter > 0 && engine != nil {
		p.X += engine.Uniform(-jitter, jitter)
		p.Y += engine.Uniform(-jitter, jitter)
	}
	return t.world.Clamp(p)
}

func (t *Track) String() string {
	return fmt.Sprintf("Track{world=%v, boundary=%v}", t.world, t.boundary)
}

// Reward 奖励函数
// 功能：位置在赛道内返回在轨奖励，否则返回出界惩罚
// 说明：只依赖 (boundary, p)，与车辆的其它状态无关
func Reward(boundary geometry.Rect, p geometry.Point, rewards config.Reward) float64 {
	return lo.Ternary(boundary.Contains(p), rewards.OnTrack, rewards.OffTrack)
}
