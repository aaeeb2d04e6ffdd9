package interfaces

import (
	"context"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/model"

	"github.com/sirupsen/logrus"
)

// Factory 数据源适配器工厂函数签名
// 入参：数据源配置、日志实例
// 出参：实现RaceSource接口的适配器实例
type Factory func(cfg *config.SourceConfig, logger *logrus.Logger) RaceSource

// RaceSource 所有赛事数据源必须实现的核心接口。
// 所有 Fetch 方法遵循同一失败约定：重试一次后仍失败则返回错误，
// 调用方跳过该工作单元（缺一项统计、缺一个场地），绝不中断整次同步。
type RaceSource interface {
	GetName() string                                                              // 数据源名称
	FetchSeasonEventRefs(ctx context.Context, year int) ([]string, error)         // 赛季全部比赛引用（分页聚合）
	FetchEvent(ctx context.Context, ref string) (*model.EventPayload, error)      // 比赛详情
	FetchVenue(ctx context.Context, ref string) (*model.VenuePayload, error)      // 赛道详情
	FetchCompetition(ctx context.Context, ref string) (*model.CompetitionPayload, error) // 比赛对阵详情（名次、车辆、统计引用）
	FetchAthlete(ctx context.Context, year int, athleteID uint64) (*model.AthletePayload, error) // 车手详情
	FetchCompetitorStats(ctx context.Context, ref string) (*model.StatsPayload, error)           // 车手单场统计
	FetchStandings(ctx context.Context, year int) (*model.StandingsPayload, error)               // 赛季积分榜
}
