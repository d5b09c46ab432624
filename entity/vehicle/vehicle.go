package vehicle

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
)

const (
	kmhPerSpeedUnit = 0.10 // HUD显示用的速度换算：像素/秒 -> 约km/h
)

// Vehicle 车辆实体
// 功能：持有位姿、速度、前轮转角与传感器读数，由Advance与RecomputeSensors按步更新
// 说明：单写者，不可并发调用
type Vehicle struct {
	// 不可变参数

	params config.VehicleRuntime
	sensor config.SensorRuntime
	world  geometry.Rect // 位置截断范围

	// 状态

	position   geometry.Point
	heading    float64 // (-π, π]
	speed      float64 // [MaxReverseSpeed, MaxSpeed]
	steerAngle float64 // [-MaxSteerAngle, MaxSteerAngle]

	sensors []entity.SensorReading // 与配置角度顺序一致
}

// New 创建车辆
// 功能：校验参数并在start处创建静止车辆，朝向heading
// 参数：params-车辆参数，sensor-传感器参数，world-世界范围，start-初始位置，heading-初始朝向
// 返回：车辆指针；参数不合法时返回包装config.ErrInvalidConfig的错误
// 说明：初始传感器读数为满量程，命中点为车辆位置，调用RecomputeSensors后才有实际读数
func New(
	params config.VehicleRuntime,
	sensor config.SensorRuntime,
	world geometry.Rect,
	start geometry.Point,
	heading float64,
) (*Vehicle, error) {
	if err := validate(params, sensor, world); err != nil {
		return nil, err
	}
	if !start.IsFinite() || !geometry.IsFinite(heading) {
		return nil, fmt.Errorf("%w: start pose %v/%v", ErrNonFinite, start, heading)
	}
	v := &Vehicle{
		params:   params,
		sensor:   sensor,
		world:    world,
		position: world.Clamp(start),
		heading:  geometry.WrapToPi(heading),
	}
	v.sensors = make([]entity.SensorReading, len(sensor.Angles))
	for i := range v.sensors {
		v.sensors[i] = entity.SensorReading{
			AngleDeg: v.angleDeg(i),
			Distance: sensor.MaxRange,
			Hit:      v.position,
		}
	}
	return v, nil
}

func validate(p config.VehicleRuntime, s config.SensorRuntime, world geometry.Rect) error {
	switch {
	case !(p.WheelBase > 0):
		return fmt.Errorf("%w: wheel base must be positive, got %v", config.ErrInvalidConfig, p.WheelBase)
	case !(p.MaxSpeed > p.MaxReverseSpeed):
		return fmt.Errorf("%w: max speed %v must exceed max reverse speed %v", config.ErrInvalidConfig, p.MaxSpeed, p.MaxReverseSpeed)
	case p.Accel < 0, p.Brake < 0, p.Friction < 0:
		return fmt.Errorf("%w: accel/brake/friction must be non-negative", config.ErrInvalidConfig)
	case p.MaxSteerAngle < 0, p.SteerRate < 0, p.SteerReturnRate < 0, p.SteerReturnSpeedThreshold < 0, p.MaxYawRate < 0:
		return fmt.Errorf("%w: steering limits and rates must be non-negative", config.ErrInvalidConfig)
	case !(s.MaxRange > 0):
		return fmt.Errorf("%w: sensor max range must be positive, got %v", config.ErrInvalidConfig, s.MaxRange)
	case !(s.Step > 0):
		return fmt.Errorf("%w: sensor step must be positive, got %v", config.ErrInvalidConfig, s.Step)
	case len(s.AnglesDeg) != 0 && len(s.AnglesDeg) != len(s.Angles):
		return fmt.Errorf("%w: sensor angle lists differ in length", config.ErrInvalidConfig)
	case !world.IsFinite() || world.Empty():
		return fmt.Errorf("%w: world %v is empty", config.ErrInvalidConfig, world)
	}
	for _, x := range []float64{
		p.WheelBase, p.TrackWidth, p.MaxSpeed, p.MaxReverseSpeed, p.Accel, p.Brake, p.Friction,
		p.MaxSteerAngle, p.SteerRate, p.SteerReturnRate, p.SteerReturnSpeedThreshold, p.MaxYawRate,
		s.MaxRange, s.Step,
	} {
		if !geometry.IsFinite(x) {
			return fmt.Errorf("%w: vehicle parameters must be finite", config.ErrInvalidConfig)
		}
	}
	for _, a := range s.Angles {
		if !geometry.IsFinite(a) {
			return fmt.Errorf("%w: sensor angles must be finite", config.ErrInvalidConfig)
		}
	}
	return nil
}

func (v *Vehicle) angleDeg(i int) float64 {
	if i < len(v.sensor.AnglesDeg) {
		return v.sensor.AnglesDeg[i]
	}
	return geometry.Degrees(v.sensor.Angles[i])
}

// getter

func (v *Vehicle) Position() geometry.Point { return v.position }
func (v *Vehicle) Heading() float64         { return v.heading }
func (v *Vehicle) Speed() float64           { return v.speed }
func (v *Vehicle) SteerAngle() float64      { return v.steerAngle }

// Pose 当前位姿
func (v *Vehicle) Pose() entity.Pose {
	return entity.Pose{
		Position:   v.position,
		Heading:    v.heading,
		Speed:      v.speed,
		SteerAngle: v.steerAngle,
	}
}

// SetPose 直接设置车辆状态（episode重置时指定初始状态）
// 说明：与Advance一样施加全部不变量：位置截断到世界范围、朝向回绕、速度与转角截断
func (v *Vehicle) SetPose(p entity.Pose) error {
	if !p.Position.IsFinite() || !geometry.IsFinite(p.Heading) ||
		!geometry.IsFinite(p.Speed) || !geometry.IsFinite(p.SteerAngle) {
		return fmt.Errorf("%w: pose %+v", ErrNonFinite, p)
	}
	v.position = v.world.Clamp(p.Position)
	v.heading = geometry.WrapToPi(p.Heading)
	v.speed = lo.Clamp(p.Speed, v.params.MaxReverseSpeed, v.params.MaxSpeed)
	v.steerAngle = lo.Clamp(p.SteerAngle, -v.params.MaxSteerAngle, v.params.MaxSteerAngle)
	return nil
}

// Sensors 传感器读数（副本）
func (v *Vehicle) Sensors() []entity.SensorReading {
	return append([]entity.SensorReading(nil), v.sensors...)
}

// Wheels 四个车轮的位姿
// 算法说明：
// 1. 车轮中心在车身局部坐标系中位于 (±轴距/2, ±轮距/2)
// 2. 后轮朝向与车身一致，前轮朝向为车身朝向加前轮转角
// 顺序：右后、左后、右前、左前
func (v *Vehicle) Wheels() [4]entity.Wheel {
	halfWB := v.params.WheelBase / 2
	halfTW := v.params.TrackWidth / 2
	frontHeading := geometry.WrapToPi(v.heading + v.steerAngle)
	locals := [4]struct {
		p     geometry.Point
		front bool
	}{
		{geometry.Point{X: -halfWB, Y: halfTW}, false},
		{geometry.Point{X: -halfWB, Y: -halfTW}, false},
		{geometry.Point{X: halfWB, Y: halfTW}, true},
		{geometry.Point{X: halfWB, Y: -halfTW}, true},
	}
	var wheels [4]entity.Wheel
	for i, l := range locals {
		wheels[i] = entity.Wheel{
			Position: geometry.LocalToWorld(v.position, v.heading, l.p),
			Heading:  lo.Ternary(l.front, frontHeading, v.heading),
			Front:    l.front,
		}
	}
	return wheels
}

// Telemetry 仪表盘数据
type Telemetry struct {
	Speed      float64 // 像素/秒
	SpeedKmh   float64 // 约km/h
	HeadingDeg float64
	SteerDeg   float64
	SteerNorm  float64 // 归一化转角 [-1,1]
}

// Telemetry 生成当前的仪表盘数据
func (v *Vehicle) Telemetry() Telemetry {
	return Telemetry{
		Speed:      v.speed,
		SpeedKmh:   v.speed * kmhPerSpeedUnit,
		HeadingDeg: geometry.Degrees(v.heading),
		SteerDeg:   geometry.Degrees(v.steerAngle),
		SteerNorm:  v.normalizedSteer(),
	}
}

func (t Telemetry) String() string {
	return fmt.Sprintf("speed=%7.2fpx/s (~%5.1fkm/h) heading=%7.2fdeg steer=%7.2fdeg (norm %+4.2f)",
		t.Speed, t.SpeedKmh, t.HeadingDeg, t.SteerDeg, t.SteerNorm)
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{pos=%v, heading=%.4f, speed=%.2f, steer=%.4f}",
		v.position, v.heading, v.speed, v.steerAngle)
}

// finite 当前状态是否全部有限
func (v *Vehicle) finite() bool {
	return v.position.IsFinite() && geometry.IsFinite(v.heading) &&
		geometry.IsFinite(v.speed) && geometry.IsFinite(v.steerAngle)
}
