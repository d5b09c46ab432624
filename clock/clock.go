package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
)

// Clock 仿真时钟
// 功能：管理一个episode内的时间推进
// 说明：固定步长DT，模拟区间为 [0, END_STEP)
type Clock struct {
	DT       float64 // 每步时间间隔（秒）
	END_STEP int32   // 结束步

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，包含时间间隔与总步数
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:       stepConfig.Interval,
		END_STEP: stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态（新episode开始时调用）
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
}

// Advance 推进一步，dt为本步实际使用的时间间隔
// 说明：dt允许与DT不同（外部驱动可逐步指定），T按实际dt累加
func (c *Clock) Advance(dt float64) {
	c.InternalStep++
	c.T += dt
}

// Exhausted 是否已经用完本episode的步数
func (c *Clock) Exhausted() bool {
	return c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示（HH:MM:SS.ss）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
