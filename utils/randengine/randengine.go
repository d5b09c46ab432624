// 随机数引擎，包装了golang.org/x/exp/rand，提供出生点扰动与随机驾驶策略所需的采样方法
package randengine

import (
	"flag"
	"log"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎（非线程安全）
// 说明：每个仿真上下文持有独立的引擎，不在上下文之间共享
type Engine struct {
	*rand.Rand // 底层随机数生成器
	seed       uint64
}

// New 创建随机数引擎
// 参数：seed-随机数种子（实际种子为seed+rand.seed_offset）
func New(seed uint64) *Engine {
	s := seed + *seedOffset
	return &Engine{Rand: rand.New(rand.NewSource(s)), seed: s}
}

// Seed 返回实际使用的种子
func (e *Engine) Seed() uint64 {
	return e.seed
}

// DiscreteDistribution 按给定权重生成随机下标
// 算法说明：累积权重直到超过 [0, 总权重) 上的随机数
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	log.Panicf("randengine: DiscreteDistribution: sum: %f random: %f", sum, random)
	return -1
}

// PTrue 以指定概率返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Uniform 在 [lo, hi) 上均匀采样，hi<=lo时返回lo
func (e *Engine) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*e.Float64()
}

// IntRange 在闭区间 [lo, hi] 上均匀采样整数
func (e *Engine) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + e.Intn(hi-lo+1)
}
