package vehicle

import (
	"math"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
)

// RecomputeSensors 重新计算所有测距传感器读数
// 功能：从车辆当前位置沿每条配置角度发射射线，测量到赛道边界的距离
// 参数：boundary-赛道边界
// 说明：读数顺序与配置角度顺序一致，整体替换上一步的读数
func (v *Vehicle) RecomputeSensors(boundary geometry.Rect) {
	readings := make([]entity.SensorReading, len(v.sensor.Angles))
	for i, rel := range v.sensor.Angles {
		d, hit := march(v.position, v.heading+rel, boundary, v.sensor.MaxRange, v.sensor.Step)
		readings[i] = entity.SensorReading{
			AngleDeg: v.angleDeg(i),
			Distance: d,
			Hit:      hit,
		}
	}
	v.sensors = readings
}

// march 沿射线按固定步长离散采样
// 算法说明：
// 1. 从距离0开始，每次前进step，采样点记为当前命中点
// 2. 采样点落在边界外时停止，返回该越界点与已行进距离
// 3. 行进距离达到maxRange时停止，返回maxRange与最远的采样点
// 说明：离散采样可能越过真实边界至多一个step，这是有意的近似
func march(origin geometry.Point, angle float64, boundary geometry.Rect, maxRange, step float64) (float64, geometry.Point) {
	d := 0.
	hit := origin
	for d < maxRange {
		p := geometry.Polar(origin, angle, d)
		hit = p
		if !boundary.Contains(p) {
			break
		}
		d += step
	}
	return math.Min(d, maxRange), hit
}
