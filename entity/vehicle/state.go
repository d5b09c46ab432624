package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
)

// Observe 生成归一化观测向量
// 功能：将传感器读数与动力学状态归一化为策略输入
// 返回：[各传感器 distance/MaxRange ∈ [0,1]..., 归一化速度 ∈ [0,1], 归一化转角 ∈ [-1,1]]
// 说明：纯函数，不修改车辆状态，两次Advance之间多次调用结果相同
func (v *Vehicle) Observe() entity.Observation {
	obs := make(entity.Observation, 0, len(v.sensors)+2)
	obs = append(obs, lo.Map(v.sensors, func(r entity.SensorReading, _ int) float64 {
		return lo.Clamp(r.Distance/v.sensor.MaxRange, 0, 1)
	})...)
	return append(obs, v.normalizedSpeed(), v.normalizedSteer())
}

// normalizedSpeed 将速度从 [MaxReverseSpeed, MaxSpeed] 线性映射到 [0,1]
func (v *Vehicle) normalizedSpeed() float64 {
	p := &v.params
	return lo.Clamp((v.speed-p.MaxReverseSpeed)/(p.MaxSpeed-p.MaxReverseSpeed), 0, 1)
}

// normalizedSteer 将转角映射到 [-1,1]，最大转角为0时恒为0
func (v *Vehicle) normalizedSteer() float64 {
	if v.params.MaxSteerAngle <= 0 {
		return 0
	}
	return lo.Clamp(v.steerAngle/v.params.MaxSteerAngle, -1, 1)
}

// Reward 车辆当前位置的单步奖励，只取决于位置与边界
func Reward(v *Vehicle, boundary geometry.Rect, rewards config.Reward) float64 {
	return track.Reward(boundary, v.position, rewards)
}
