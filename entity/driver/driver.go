// 内置驾驶策略，用于无人值守的rollout与服务端演示
package driver

import (
	"fmt"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
)

const (
	RandomName   = "random"
	FollowerName = "follower"
)

// Names 全部内置策略名
var Names = []string{RandomName, FollowerName}

// New 按名称创建策略
// 参数：name-策略名，rc-运行时配置，seed-随机策略使用的种子
func New(name string, rc *config.RuntimeConfig, seed uint64) (entity.IDriver, error) {
	switch name {
	case RandomName:
		return NewRandom(seed), nil
	case FollowerName:
		return NewFollower(rc), nil
	default:
		return nil, fmt.Errorf("unknown driver %q, expected one of %v", name, Names)
	}
}
