package config

// World 世界范围，车辆位置被截断在 [0,Width]×[0,Height]
type World struct {
	Width  float64 `yaml:"width"`  // 世界宽度（像素）
	Height float64 `yaml:"height"` // 世界高度（像素）
}

// Track 赛道矩形配置
// 说明：Rect非空时直接使用（min_x/min_y/max_x/max_y），否则由世界范围向内缩进Margin得到
type Track struct {
	MarginX float64    `yaml:"margin_x"`       // 赛道左右两侧距世界边界的距离
	MarginY float64    `yaml:"margin_y"`       // 赛道上下两侧距世界边界的距离
	Rect    *TrackRect `yaml:"rect,omitempty"` // 显式指定的赛道矩形（优先级高于Margin）
}

// TrackRect 显式赛道矩形
type TrackRect struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// Vehicle 车辆几何与动力学参数（角度类参数单位为度，运行时转换为弧度）
type Vehicle struct {
	BodyLength float64 `yaml:"body_length"` // 车身长度
	BodyWidth  float64 `yaml:"body_width"`  // 车身宽度
	WheelBase  float64 `yaml:"wheel_base"`  // 轴距
	TrackWidth float64 `yaml:"track_width"` // 轮距

	MaxSpeed        float64 `yaml:"max_speed"`         // 最大前进速度（像素/秒）
	MaxReverseSpeed float64 `yaml:"max_reverse_speed"` // 最大倒车速度（负值）
	Accel           float64 `yaml:"accel"`             // 油门加速度
	Brake           float64 `yaml:"brake"`             // 刹车/倒车加速度
	Friction        float64 `yaml:"friction"`          // 无油门时的速度衰减率

	MaxSteerAngleDeg          float64 `yaml:"max_steer_angle_deg"`          // 前轮最大转角
	SteerRateDeg              float64 `yaml:"steer_rate_deg"`               // 转向输入时前轮转角变化率（度/秒）
	SteerReturnRateDeg        float64 `yaml:"steer_return_rate_deg"`        // 自动回正速率（度/秒）
	SteerReturnSpeedThreshold float64 `yaml:"steer_return_speed_threshold"` // 低于该速度不回正
	MaxYawRateDeg             float64 `yaml:"max_yaw_rate_deg"`             // 最大横摆角速度（度/秒）
}

// Sensor 测距传感器配置
type Sensor struct {
	AnglesDeg []float64 `yaml:"angles_deg"` // 相对车头的射线角度（度），顺序即输出顺序
	MaxRange  float64   `yaml:"max_range"`  // 最大测距
	Step      float64   `yaml:"step"`       // 射线步进长度
}

// Reward 奖励配置
type Reward struct {
	OnTrack  float64 `yaml:"on_track"`  // 位于赛道内的每步奖励
	OffTrack float64 `yaml:"off_track"` // 驶出赛道的每步惩罚
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
	Total    int32   `yaml:"total"`    // 每个episode的最大步数
}

// Control 模拟器控制配置
type Control struct {
	Step              ControlStep `yaml:"step"`
	Episodes          int         `yaml:"episodes"`                      // rollout模式下运行的episode数
	Parallel          int         `yaml:"parallel"`                      // rollout并发数
	Seed              uint64      `yaml:"seed"`                          // 基础随机种子，第i个episode使用seed+i
	SpawnJitter       float64     `yaml:"spawn_jitter,omitempty"`        // 出生点在世界中心附近的均匀扰动半宽
	TerminateOffTrack bool        `yaml:"terminate_off_track,omitempty"` // 驶出赛道时是否结束episode
}

// Server 环境服务配置
type Server struct {
	Listen string `yaml:"listen"` // 监听地址
}

// Config YAML配置文件的根结构
type Config struct {
	World   World   `yaml:"world"`
	Track   Track   `yaml:"track"`
	Vehicle Vehicle `yaml:"vehicle"`
	Sensor  Sensor  `yaml:"sensor"`
	Reward  Reward  `yaml:"reward"`
	Control Control `yaml:"control"`
	Server  Server  `yaml:"server"`
}

// Default 默认配置
// 说明：YAML在该配置之上反序列化，未出现的字段保留默认值
func Default() Config {
	return Config{
		World: World{Width: 1000, Height: 700},
		Track: Track{MarginX: 60, MarginY: 50},
		Vehicle: Vehicle{
			BodyLength: 80,
			BodyWidth:  40,
			WheelBase:  52,
			TrackWidth: 32,

			MaxSpeed:        280,
			MaxReverseSpeed: -120,
			Accel:           240,
			Brake:           300,
			Friction:        120,

			MaxSteerAngleDeg:          18,
			SteerRateDeg:              90,
			SteerReturnRateDeg:        45,
			SteerReturnSpeedThreshold: 20,
			MaxYawRateDeg:             120,
		},
		Sensor: Sensor{
			AnglesDeg: []float64{-60, -30, -10, 0, 10, 30, 60},
			MaxRange:  300,
			Step:      4,
		},
		Reward: Reward{OnTrack: 0.01, OffTrack: -1.0},
		Control: Control{
			Step:     ControlStep{Interval: 1.0 / 60, Total: 3600},
			Episodes: 1,
			Parallel: 1,
		},
		Server: Server{Listen: ":51102"},
	}
}
