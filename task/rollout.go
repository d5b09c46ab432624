package task

import (
	"context"
	"fmt"

	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// DriverFactory 为每个episode创建独立的驾驶策略
type DriverFactory func(rc *config.RuntimeConfig, seed uint64) (entity.IDriver, error)

// EpisodeSummary 单个episode的统计
type EpisodeSummary struct {
	ID            string  `json:"id"`
	Seed          uint64  `json:"seed"`
	Steps         int32   `json:"steps"`
	Return        float64 `json:"return"`
	OffTrackSteps int32   `json:"off_track_steps"`
	Terminated    bool    `json:"terminated"` // 是否因出界提前结束
}

// RolloutReport 一批episode的统计
type RolloutReport struct {
	Driver     string           `json:"driver"`
	Episodes   []EpisodeSummary `json:"episodes"` // 与episode下标一一对应
	MeanReturn float64          `json:"mean_return"`
	StdReturn  float64          `json:"std_return"`
	MeanSteps  float64          `json:"mean_steps"`
}

// RunRollouts 无界面批量运行episode
// 功能：按control.episodes运行若干episode，最多control.parallel个并行，每个episode拥有独立的上下文与策略
// 参数：ctx-取消信号，rc-运行时配置，newDriver-策略工厂
// 返回：统计报告；任一episode出错或ctx取消时返回错误
// 算法说明：
// 1. 第i个episode使用种子 control.seed+i，结果与并行度无关
// 2. 每个episode循环：策略根据上一步观测决策 -> Tick（dt取时钟固定步长）-> 直到Done
// 3. 全部完成后用gonum/stat计算回报的均值与标准差
func RunRollouts(ctx context.Context, rc *config.RuntimeConfig, newDriver DriverFactory) (*RolloutReport, error) {
	episodes := rc.C.Episodes
	summaries := make([]EpisodeSummary, episodes)
	names := make([]string, episodes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(rc.C.Parallel, 1))
	for i := range episodes {
		seed := rc.C.Seed + uint64(i)
		g.Go(func() error {
			driver, err := newDriver(rc, seed)
			if err != nil {
				return fmt.Errorf("episode %d: create driver: %w", i, err)
			}
			names[i] = driver.Name()
			summary, err := runEpisode(gctx, rc, driver, seed)
			if err != nil {
				return fmt.Errorf("episode %d: %w", i, err)
			}
			summaries[i] = summary
			log.Infof("episode %d (%s) finished: steps=%d return=%.2f off_track=%d",
				i, summary.ID, summary.Steps, summary.Return, summary.OffTrackSteps)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RolloutReport{Episodes: summaries}
	if len(names) > 0 {
		report.Driver = names[0]
	}
	if len(summaries) > 0 {
		returns := make([]float64, len(summaries))
		steps := make([]float64, len(summaries))
		for i, s := range summaries {
			returns[i] = s.Return
			steps[i] = float64(s.Steps)
		}
		report.MeanReturn = stat.Mean(returns, nil)
		if len(returns) > 1 {
			report.StdReturn = stat.StdDev(returns, nil)
		}
		report.MeanSteps = stat.Mean(steps, nil)
	}
	return report, nil
}

func runEpisode(ctx context.Context, rc *config.RuntimeConfig, driver entity.IDriver, seed uint64) (EpisodeSummary, error) {
	sim, err := NewContext(rc, seed)
	if err != nil {
		return EpisodeSummary{}, err
	}
	result := sim.Snapshot()
	for !result.Done {
		if err := ctx.Err(); err != nil {
			return EpisodeSummary{}, err
		}
		result, err = sim.Tick(sim.Clock().DT, driver.Decide(result.Observation))
		if err != nil {
			return EpisodeSummary{}, err
		}
	}
	return EpisodeSummary{
		ID:            sim.ID(),
		Seed:          seed,
		Steps:         result.Step,
		Return:        sim.Return(),
		OffTrackSteps: sim.OffTrackSteps(),
		Terminated:    result.Step < sim.Clock().END_STEP,
	}, nil
}

func (r *RolloutReport) String() string {
	return fmt.Sprintf("driver=%s episodes=%d mean_return=%.3f std_return=%.3f mean_steps=%.1f",
		r.Driver, len(r.Episodes), r.MeanReturn, r.StdReturn, r.MeanSteps)
}
