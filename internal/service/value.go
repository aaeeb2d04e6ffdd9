package service

import (
	"context"
	"fmt"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// 赛道类型分布要求的最少样本数（低于3场的分布没有参考价值）
const minTrackTypeStarts = 3

// 榜单查询条数
const (
	topWinSeasonsLimit = 15
	careerWinsLimit    = 20
)

// ValueService 身价价值查询服务：聚合查询的参数补全与DTO整形
type ValueService struct {
	valueRepo    repository.ValueRepository
	salaryRepo   repository.SalaryRepository
	standingRepo repository.StandingRepository
	cfg          *config.Config
	logger       *logrus.Logger
}

// NewValueService 创建价值查询服务
func NewValueService(
	valueRepo repository.ValueRepository,
	salaryRepo repository.SalaryRepository,
	standingRepo repository.StandingRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *ValueService {
	return &ValueService{
		valueRepo:    valueRepo,
		salaryRepo:   salaryRepo,
		standingRepo: standingRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// RecentForm 最近N场（有成绩的场次）身价车手的得分状态
func (s *ValueService) RecentForm(ctx context.Context, year, segment int) ([]repository.RecentFormRow, error) {
	return s.valueRepo.RecentForm(ctx, year, segment, s.cfg.Fantasy.RecentRaces)
}

// TrackHistory 单赛道上身价车手的历史得分
func (s *ValueService) TrackHistory(ctx context.Context, year, segment int, trackID uint64) ([]repository.TrackHistoryRow, error) {
	return s.valueRepo.TrackHistory(ctx, year, segment, trackID)
}

// SegmentValue 赛段四条赛道合并的性价比榜
func (s *ValueService) SegmentValue(ctx context.Context, year, segment int) ([]repository.SegmentValueRow, error) {
	trackIDs, err := s.segmentTrackIDs(ctx, year, segment)
	if err != nil {
		return nil, err
	}
	return s.valueRepo.SegmentValue(ctx, year, segment, trackIDs, s.cfg.Fantasy.MinStarts)
}

// TrackTypeAverages 按赛道类型的得分分布（地板/天花板）
func (s *ValueService) TrackTypeAverages(ctx context.Context, year, segment int) ([]repository.TrackTypeRow, error) {
	return s.valueRepo.TrackTypeAverages(ctx, year, segment, minTrackTypeStarts)
}

// TopWinSeasons 单赛季胜场排行
func (s *ValueService) TopWinSeasons(ctx context.Context) ([]repository.TopWinSeasonRow, error) {
	return s.standingRepo.TopWinSeasons(ctx, topWinSeasonsLimit)
}

// CareerWins 生涯累计胜场排行
func (s *ValueService) CareerWins(ctx context.Context) ([]repository.CareerWinsRow, error) {
	return s.standingRepo.CareerWins(ctx, careerWinsLimit)
}

// Champions 历年总冠军
func (s *ValueService) Champions(ctx context.Context) ([]repository.ChampionRow, error) {
	return s.standingRepo.Champions(ctx)
}

// segmentTrackIDs 从赛段配置解析四条赛道的ID
func (s *ValueService) segmentTrackIDs(ctx context.Context, year, segment int) ([]uint64, error) {
	tracks, err := s.salaryRepo.GetSegmentTracks(ctx, year, segment)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("赛段赛道未配置: year: %d, segment: %d", year, segment)
	}
	ids := make([]uint64, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.TrackID)
	}
	return ids, nil
}
