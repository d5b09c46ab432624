package config

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig 配置不合法，所有校验错误都包装该错误
var ErrInvalidConfig = errors.New("invalid config")

// VehicleRuntime 运行时车辆参数（角度已转换为弧度），构造后不可变
type VehicleRuntime struct {
	BodyLength float64
	BodyWidth  float64
	WheelBase  float64
	TrackWidth float64

	MaxSpeed        float64
	MaxReverseSpeed float64
	Accel           float64
	Brake           float64
	Friction        float64

	MaxSteerAngle             float64
	SteerRate                 float64
	SteerReturnRate           float64
	SteerReturnSpeedThreshold float64
	MaxYawRate                float64
}

// SensorRuntime 运行时传感器参数
type SensorRuntime struct {
	AnglesDeg []float64 // 原始角度（度）
	Angles    []float64 // 相对角度（弧度），与AnglesDeg一一对应
	MaxRange  float64
	Step      float64
}

// RuntimeConfig 运行时配置
// 功能：存储校验后的配置以及换算后的运行时参数（弧度、世界矩形、赛道矩形）
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	World   geometry.Rect // 世界范围 [0,W]×[0,H]
	Track   geometry.Rect // 赛道边界
	Vehicle VehicleRuntime
	Sensor  SensorRuntime
	Reward  Reward
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：校验配置，并将角度参数换算为弧度、计算世界与赛道矩形
// 参数：config-原始配置对象
// 返回：运行时配置指针；配置不合法时返回包装ErrInvalidConfig的错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	v := config.Vehicle
	rc := &RuntimeConfig{
		All:   config,
		C:     config.Control,
		World: geometry.NewRect(0, 0, config.World.Width, config.World.Height),
		Track: config.TrackRect(),
		Vehicle: VehicleRuntime{
			BodyLength:                v.BodyLength,
			BodyWidth:                 v.BodyWidth,
			WheelBase:                 v.WheelBase,
			TrackWidth:                v.TrackWidth,
			MaxSpeed:                  v.MaxSpeed,
			MaxReverseSpeed:           v.MaxReverseSpeed,
			Accel:                     v.Accel,
			Brake:                     v.Brake,
			Friction:                  v.Friction,
			MaxSteerAngle:             geometry.Radians(v.MaxSteerAngleDeg),
			SteerRate:                 geometry.Radians(v.SteerRateDeg),
			SteerReturnRate:           geometry.Radians(v.SteerReturnRateDeg),
			SteerReturnSpeedThreshold: v.SteerReturnSpeedThreshold,
			MaxYawRate:                geometry.Radians(v.MaxYawRateDeg),
		},
		Sensor: SensorRuntime{
			AnglesDeg: append([]float64(nil), config.Sensor.AnglesDeg...),
			Angles:    lo.Map(config.Sensor.AnglesDeg, func(deg float64, _ int) float64 { return geometry.Radians(deg) }),
			MaxRange:  config.Sensor.MaxRange,
			Step:      config.Sensor.Step,
		},
		Reward: config.Reward,
	}
	return rc, nil
}

// Parse 解析YAML配置
// 说明：在Default()之上严格反序列化，未知字段报错
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// TrackRect 计算赛道矩形
func (c Config) TrackRect() geometry.Rect {
	if r := c.Track.Rect; r != nil {
		return geometry.Rect{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY}
	}
	return geometry.NewRect(
		c.Track.MarginX,
		c.Track.MarginY,
		c.World.Width-2*c.Track.MarginX,
		c.World.Height-2*c.Track.MarginY,
	)
}

// Validate 检查配置取值是否合法
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"world.width":                          c.World.Width,
		"world.height":                         c.World.Height,
		"track.margin_x":                       c.Track.MarginX,
		"track.margin_y":                       c.Track.MarginY,
		"vehicle.body_length":                  c.Vehicle.BodyLength,
		"vehicle.body_width":                   c.Vehicle.BodyWidth,
		"vehicle.wheel_base":                   c.Vehicle.WheelBase,
		"vehicle.track_width":                  c.Vehicle.TrackWidth,
		"vehicle.max_speed":                    c.Vehicle.MaxSpeed,
		"vehicle.max_reverse_speed":            c.Vehicle.MaxReverseSpeed,
		"vehicle.accel":                        c.Vehicle.Accel,
		"vehicle.brake":                        c.Vehicle.Brake,
		"vehicle.friction":                     c.Vehicle.Friction,
		"vehicle.max_steer_angle_deg":          c.Vehicle.MaxSteerAngleDeg,
		"vehicle.steer_rate_deg":               c.Vehicle.SteerRateDeg,
		"vehicle.steer_return_rate_deg":        c.Vehicle.SteerReturnRateDeg,
		"vehicle.steer_return_speed_threshold": c.Vehicle.SteerReturnSpeedThreshold,
		"vehicle.max_yaw_rate_deg":             c.Vehicle.MaxYawRateDeg,
		"sensor.max_range":                     c.Sensor.MaxRange,
		"sensor.step":                          c.Sensor.Step,
		"reward.on_track":                      c.Reward.OnTrack,
		"reward.off_track":                     c.Reward.OffTrack,
		"control.step.interval":                c.Control.Step.Interval,
		"control.spawn_jitter":                 c.Control.SpawnJitter,
	} {
		if !geometry.IsFinite(v) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, name, v)
		}
	}
	for i, a := range c.Sensor.AnglesDeg {
		if !geometry.IsFinite(a) {
			return fmt.Errorf("%w: sensor.angles_deg[%d] must be finite, got %v", ErrInvalidConfig, i, a)
		}
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("%w: world must have positive size, got %vx%v", ErrInvalidConfig, c.World.Width, c.World.Height)
	}
	world := geometry.NewRect(0, 0, c.World.Width, c.World.Height)
	track := c.TrackRect()
	if !track.IsFinite() || track.Empty() {
		return fmt.Errorf("%w: track %v is empty", ErrInvalidConfig, track)
	}
	if !world.ContainsRect(track) {
		return fmt.Errorf("%w: track %v exceeds world %v", ErrInvalidConfig, track, world)
	}

	v := c.Vehicle
	if v.WheelBase <= 0 {
		return fmt.Errorf("%w: vehicle.wheel_base must be positive, got %v", ErrInvalidConfig, v.WheelBase)
	}
	if v.MaxSpeed <= v.MaxReverseSpeed {
		return fmt.Errorf("%w: vehicle.max_speed (%v) must be greater than vehicle.max_reverse_speed (%v)",
			ErrInvalidConfig, v.MaxSpeed, v.MaxReverseSpeed)
	}
	for name, x := range map[string]float64{
		"vehicle.body_length":                  v.BodyLength,
		"vehicle.body_width":                   v.BodyWidth,
		"vehicle.track_width":                  v.TrackWidth,
		"vehicle.accel":                        v.Accel,
		"vehicle.brake":                        v.Brake,
		"vehicle.friction":                     v.Friction,
		"vehicle.max_steer_angle_deg":          v.MaxSteerAngleDeg,
		"vehicle.steer_rate_deg":               v.SteerRateDeg,
		"vehicle.steer_return_rate_deg":        v.SteerReturnRateDeg,
		"vehicle.steer_return_speed_threshold": v.SteerReturnSpeedThreshold,
		"vehicle.max_yaw_rate_deg":             v.MaxYawRateDeg,
		"control.spawn_jitter":                 c.Control.SpawnJitter,
	} {
		if x < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, name, x)
		}
	}

	if c.Sensor.MaxRange <= 0 {
		return fmt.Errorf("%w: sensor.max_range must be positive, got %v", ErrInvalidConfig, c.Sensor.MaxRange)
	}
	if c.Sensor.Step <= 0 {
		return fmt.Errorf("%w: sensor.step must be positive, got %v", ErrInvalidConfig, c.Sensor.Step)
	}

	if c.Control.Step.Interval <= 0 {
		return fmt.Errorf("%w: control.step.interval must be positive, got %v", ErrInvalidConfig, c.Control.Step.Interval)
	}
	if c.Control.Step.Total <= 0 {
		return fmt.Errorf("%w: control.step.total must be positive, got %v", ErrInvalidConfig, c.Control.Step.Total)
	}
	if c.Control.Episodes < 0 {
		return fmt.Errorf("%w: control.episodes must be non-negative, got %v", ErrInvalidConfig, c.Control.Episodes)
	}
	if c.Control.Parallel < 1 {
		return fmt.Errorf("%w: control.parallel must be at least 1, got %v", ErrInvalidConfig, c.Control.Parallel)
	}
	return nil
}
