package vehicle

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
)

const (
	minTurnSpeed  = 1.0  // 低于该速度时不产生横摆（避免原地打转）
	minSteerAngle = 1e-4 // 低于该转角时视为直行
)

// Advance 推进车辆动力学一步
// 功能：根据离散的转向与油门输入更新速度、前轮转角、朝向与位置
// 参数：dt-时间步长（秒，>0），steering-转向输入{-1,0,1}，throttle-油门输入{-1,0,1}
// 返回：输入或状态不合法时返回错误，此时车辆状态保持不变
// 算法说明：
// 1. 速度：油门加速、刹车减速，无油门时按摩擦向0衰减且不越过0，最后截断到[最大倒车速度, 最大速度]
// 2. 转角：有转向输入时按固定角速率转动；无输入且速度超过阈值时向0回正（不足一步直接归零）；
//    低速无输入时保持不变；最后截断到最大转角
// 3. 朝向（自行车模型）：ω = v·tan(δ)/L，截断到最大横摆角速度后积分，并回绕到(-π, π]
// 4. 位置：沿新朝向以新速度前进 v·dt，每个分量截断到世界范围
func (v *Vehicle) Advance(dt float64, steering, throttle int) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidDT, dt)
	}
	if c := (entity.Control{Steering: steering, Throttle: throttle}); !c.Valid() {
		return fmt.Errorf("%w: got %v", ErrInvalidInput, c)
	}
	if !v.finite() {
		return fmt.Errorf("%w: %v", ErrNonFinite, v)
	}

	speed := v.nextSpeed(dt, throttle)
	steer := v.nextSteer(dt, steering, speed)
	heading := v.nextHeading(dt, speed, steer)
	ds := speed * dt
	position := v.world.Clamp(geometry.Polar(v.position, heading, ds))

	// 极端dt下乘积可能溢出，在提交前拒绝，保证状态不被污染
	if !geometry.IsFinite(ds) || !position.IsFinite() || !geometry.IsFinite(heading) {
		log.Debugf("vehicle: reject non-finite step dt=%v from %v", dt, v)
		return fmt.Errorf("%w: step with dt=%v diverged", ErrNonFinite, dt)
	}

	v.speed = speed
	v.steerAngle = steer
	v.heading = heading
	v.position = position
	return nil
}

// nextSpeed 计算本步速度
func (v *Vehicle) nextSpeed(dt float64, throttle int) float64 {
	p := &v.params
	s := v.speed
	switch {
	case throttle > 0:
		s += p.Accel * dt
	case throttle < 0:
		s -= p.Brake * dt
	case s > 0:
		s = math.Max(0, s-p.Friction*dt)
	case s < 0:
		s = math.Min(0, s+p.Friction*dt)
	}
	return lo.Clamp(s, p.MaxReverseSpeed, p.MaxSpeed)
}

// nextSteer 计算本步前轮转角，speed为本步已更新的速度
func (v *Vehicle) nextSteer(dt float64, steering int, speed float64) float64 {
	p := &v.params
	a := v.steerAngle
	if steering != 0 {
		a += float64(steering) * p.SteerRate * dt
	} else if math.Abs(speed) > p.SteerReturnSpeedThreshold && a != 0 {
		delta := p.SteerReturnRate * dt
		if math.Abs(a) <= delta {
			a = 0
		} else {
			a -= geometry.Sign(a) * delta
		}
	}
	return lo.Clamp(a, -p.MaxSteerAngle, p.MaxSteerAngle)
}

// nextHeading 计算本步朝向
func (v *Vehicle) nextHeading(dt, speed, steer float64) float64 {
	p := &v.params
	omega := 0.
	if math.Abs(speed) > minTurnSpeed && math.Abs(steer) > minSteerAngle {
		omega = speed * math.Tan(steer) / p.WheelBase
	}
	omega = lo.Clamp(omega, -p.MaxYawRate, p.MaxYawRate)
	return geometry.WrapToPi(v.heading + omega*dt)
}
