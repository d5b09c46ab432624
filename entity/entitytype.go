package entity

import (
	"fmt"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
)

// 控制输入取值
const (
	LEFT    = -1 // 左转 / 刹车倒车
	NEUTRAL = 0  // 无输入
	RIGHT   = 1  // 右转 / 油门
)

// Control 每步的离散控制输入
// Steering: -1左 / 0 / +1右；Throttle: -1刹车或倒车 / 0 / +1油门
type Control struct {
	Steering int `json:"steering"`
	Throttle int `json:"throttle"`
}

// Valid 两个分量是否都在 {-1,0,1} 中
func (c Control) Valid() bool {
	return validInput(c.Steering) && validInput(c.Throttle)
}

func validInput(v int) bool {
	return v == LEFT || v == NEUTRAL || v == RIGHT
}

func (c Control) String() string {
	return fmt.Sprintf("Control{steer=%+d, throttle=%+d}", c.Steering, c.Throttle)
}

// Pose 车辆位姿与运动状态
type Pose struct {
	Position   geometry.Point `json:"position"`
	Heading    float64        `json:"heading"`     // 车身朝向（弧度，(-π, π]）
	Speed      float64        `json:"speed"`       // 有符号速度，前进为正
	SteerAngle float64        `json:"steer_angle"` // 前轮转角（弧度）
}

// SensorReading 单条测距射线的读数
type SensorReading struct {
	AngleDeg float64        `json:"angle_deg"` // 相对车头的角度（度）
	Distance float64        `json:"distance"`  // 测距结果，[0, MaxRange]
	Hit      geometry.Point `json:"hit"`       // 命中点（越界采样点或最远采样点）
}

// Wheel 车轮位姿，供渲染层使用
type Wheel struct {
	Position geometry.Point `json:"position"`
	Heading  float64        `json:"heading"`
	Front    bool           `json:"front"`
}

// Observation 归一化观测向量：各传感器距离[0,1]，然后是速度[0,1]与转角[-1,1]
type Observation []float64

// Sensors 观测向量中的传感器部分
func (o Observation) Sensors() []float64 {
	if len(o) < 2 {
		return nil
	}
	return o[:len(o)-2]
}

// Speed 观测向量中的归一化速度
func (o Observation) Speed() float64 {
	return o[len(o)-2]
}

// Steer 观测向量中的归一化转角
func (o Observation) Steer() float64 {
	return o[len(o)-1]
}

// StepResult 一步仿真的完整输出
type StepResult struct {
	EpisodeID   string          `json:"episode_id"`
	Step        int32           `json:"step"`
	T           float64         `json:"t"` // 当前仿真时间（秒）
	Pose        Pose            `json:"pose"`
	Sensors     []SensorReading `json:"sensors"`
	Wheels      [4]Wheel        `json:"wheels"`
	Observation Observation     `json:"observation"`
	Reward      float64         `json:"reward"`
	OnTrack     bool            `json:"on_track"`
	Done        bool            `json:"done"` // episode是否已结束
}
