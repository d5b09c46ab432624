package driver

import (
	"math"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"gonum.org/v1/gonum/floats"
)

const (
	steerDeadband  = 0.05 // 左右平均余量之差小于该值时不转向
	brakeClearance = 0.3  // 前方余量（归一化）小于该值时刹车
	targetSpeed    = 0.5  // 目标速度，占最大前进速度的比例
	recenterSteer  = 0.5  // 无需转向时，归一化转角超过该值则主动回正
)

// Follower 沿余量行驶的策略
// 功能：朝测距余量较大的一侧转向，前方余量不足时刹车，否则保持目标速度
// 算法说明：
// 1. 按传感器相对角度的符号把读数分成左右两组（正角度偏向右转方向），分别求平均
// 2. 右侧平均余量更大则右转，左侧更大则左转；差值在死区内时只在转角过大时回正（低速时车辆不会自动回正）
// 3. 取绝对角度最小的传感器作为前方传感器
// 4. 前方余量不足且仍在前进时刹车；速度低于目标时加油；否则滑行
type Follower struct {
	left, right []int // 左右两组传感器下标
	front       int   // 前方传感器下标，-1表示没有传感器

	zeroSpeed   float64 // 速度为0时的归一化值
	targetSpeed float64 // 目标速度的归一化值
}

func NewFollower(rc *config.RuntimeConfig) *Follower {
	f := &Follower{front: -1}
	angles := rc.Sensor.Angles
	for i, a := range angles {
		switch {
		case a < 0:
			f.left = append(f.left, i)
		case a > 0:
			f.right = append(f.right, i)
		}
	}
	if len(angles) > 0 {
		abs := make([]float64, len(angles))
		for i, a := range angles {
			abs[i] = math.Abs(a)
		}
		f.front = floats.MinIdx(abs)
	}
	p := rc.Vehicle
	span := p.MaxSpeed - p.MaxReverseSpeed
	f.zeroSpeed = -p.MaxReverseSpeed / span
	f.targetSpeed = (targetSpeed*p.MaxSpeed - p.MaxReverseSpeed) / span
	return f
}

func (f *Follower) Name() string { return FollowerName }

func (f *Follower) Decide(obs entity.Observation) entity.Control {
	sensors := obs.Sensors()
	c := entity.Control{}

	diff := mean(sensors, f.right) - mean(sensors, f.left)
	switch {
	case diff > steerDeadband:
		c.Steering = entity.RIGHT
	case diff < -steerDeadband:
		c.Steering = entity.LEFT
	case obs.Steer() > recenterSteer:
		c.Steering = entity.LEFT
	case obs.Steer() < -recenterSteer:
		c.Steering = entity.RIGHT
	}

	speed := obs.Speed()
	switch {
	case f.front >= 0 && f.front < len(sensors) && sensors[f.front] < brakeClearance && speed > f.zeroSpeed:
		c.Throttle = -1
	case speed < f.targetSpeed:
		c.Throttle = 1
	}
	return c
}

func mean(values []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	picked := make([]float64, 0, len(idx))
	for _, i := range idx {
		if i < len(values) {
			picked = append(picked, values[i])
		}
	}
	if len(picked) == 0 {
		return 0
	}
	return floats.Sum(picked) / float64(len(picked))
}
