package driver

import (
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/randengine"
)

const (
	minHoldTicks = 5  // 随机动作最短保持步数
	maxHoldTicks = 40 // 随机动作最长保持步数

	abandonProb = 0.02 // 每步提前放弃当前动作的概率
)

var (
	// 下标0,1,2分别对应输入-1,0,1
	steeringWeights = []float64{1, 2, 1}
	throttleWeights = []float64{1, 1, 3}
)

// Random 随机策略
// 功能：按权重随机选择一组控制输入，并保持随机步数（或以小概率提前放弃）后再重新选择
// 说明：持有独立的随机数引擎，相同种子产生相同的动作序列
type Random struct {
	generator *randengine.Engine

	current entity.Control
	hold    int // 当前动作剩余保持步数
}

func NewRandom(seed uint64) *Random {
	return &Random{generator: randengine.New(seed)}
}

func (r *Random) Name() string { return RandomName }

// Decide 忽略观测，仅按随机过程给出控制输入
func (r *Random) Decide(entity.Observation) entity.Control {
	if r.hold <= 0 || r.generator.PTrue(abandonProb) {
		r.current = entity.Control{
			Steering: int(r.generator.DiscreteDistribution(steeringWeights)) - 1,
			Throttle: int(r.generator.DiscreteDistribution(throttleWeights)) - 1,
		}
		r.hold = r.generator.IntRange(minHoldTicks, maxHoldTicks)
	}
	r.hold--
	return r.current
}
