package service

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"
	"RaceStatSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// 梦幻计分固定档位：正赛按完赛名次取分，41名以外不得分
var raceScale = map[int]int{
	1: 300, 2: 250, 3: 220, 4: 200, 5: 180, 6: 160, 7: 150, 8: 146, 9: 142, 10: 138,
	11: 134, 12: 130, 13: 126, 14: 122, 15: 118, 16: 114, 17: 110, 18: 106, 19: 102, 20: 98,
	21: 94, 22: 90, 23: 86, 24: 82, 25: 78, 26: 74, 27: 70, 28: 66, 29: 62, 30: 58,
	31: 54, 32: 50, 33: 45, 34: 40, 35: 35, 36: 30, 37: 25, 38: 20, 39: 15, 40: 10, 41: 5,
}

// 排位赛档位：发车名次15名以内得分
var qualScale = map[int]int{
	1: 75, 2: 50, 3: 45, 4: 40, 5: 35, 6: 30, 7: 25, 8: 20,
	9: 15, 10: 10, 11: 8, 12: 6, 13: 4, 14: 2, 15: 1,
}

const (
	// RaceLeaderBonus 领先圈数最多的车手加分（并列全部获得）
	RaceLeaderBonus = 100
	// QualLeaderBonus 杆位加分
	QualLeaderBonus = 25
)

// ScoringService 梦幻积分计算服务
type ScoringService struct {
	fantasyRepo repository.FantasyRepository
	logger      *logrus.Logger
}

// NewScoringService 创建计分服务
func NewScoringService(fantasyRepo repository.FantasyRepository, logger *logrus.Logger) *ScoringService {
	return &ScoringService{
		fantasyRepo: fantasyRepo,
		logger:      logger,
	}
}

// SeedPointsScale 启动时把两套档位写入 points_scale 供查询端对账
func (s *ScoringService) SeedPointsScale(ctx context.Context) error {
	entries := make([]*model.PointsScale, 0, len(raceScale)+len(qualScale))
	for pos := 1; pos <= len(raceScale); pos++ {
		entries = append(entries, &model.PointsScale{
			Position:  pos,
			ScaleType: model.ScaleRace,
			Points:    raceScale[pos],
		})
	}
	for pos := 1; pos <= len(qualScale); pos++ {
		entries = append(entries, &model.PointsScale{
			Position:  pos,
			ScaleType: model.ScaleQualifying,
			Points:    qualScale[pos],
		})
	}
	if err := s.fantasyRepo.SeedScale(ctx, entries); err != nil {
		return fmt.Errorf("播种积分档位失败: %w", err)
	}
	return nil
}

// ScoreUnscoredRaces 为所有尚未计分的比赛生成梦幻得分，返回计分的比赛数。
// 已有任何得分行的比赛整场跳过，历史得分一旦写入绝不改动。
func (s *ScoringService) ScoreUnscoredRaces(ctx context.Context) (int, error) {
	// 1. 找出有成绩但没有得分的比赛
	raceIDs, err := s.fantasyRepo.ListUnscoredRaceIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("查询未计分比赛失败: %w", err)
	}
	if len(raceIDs) == 0 {
		return 0, nil
	}

	scored := 0
	for _, raceID := range raceIDs {
		// 2. 加载该场全部成绩
		results, err := s.fantasyRepo.GetResultsByRace(ctx, raceID)
		if err != nil {
			s.logger.WithError(err).WithField("race_id", raceID).Warn("加载成绩失败，跳过该场")
			continue
		}
		if len(results) == 0 {
			continue
		}

		// 3. 计算并整场写入
		scores := buildRaceScores(raceID, results)
		if err := s.fantasyRepo.InsertScores(ctx, scores); err != nil {
			s.logger.WithError(err).WithField("race_id", raceID).Warn("写入得分失败，跳过该场")
			continue
		}
		scored++
	}

	if scored > 0 {
		s.logger.Infof("梦幻计分：新计 %d 场比赛", scored)
	}
	return scored, nil
}

// buildRaceScores 按档位推导一场比赛的全部得分行。
// 名次缺失或超出档位记0分；领先圈数并列最多的车手都拿加分，全场0圈则无人获得。
func buildRaceScores(raceID string, results []model.RaceResult) []*model.FantasyScore {
	maxLapsLed := 0
	for i := range results {
		if results[i].LapsLed != nil && *results[i].LapsLed > maxLapsLed {
			maxLapsLed = *results[i].LapsLed
		}
	}

	scores := make([]*model.FantasyScore, 0, len(results))
	for i := range results {
		r := &results[i]

		racePts := 0
		if r.FinishPos != nil {
			racePts = raceScale[*r.FinishPos]
		}
		qualPts := 0
		qualLeaderBonus := 0
		if r.StartPos != nil {
			qualPts = qualScale[*r.StartPos]
			if *r.StartPos == 1 {
				qualLeaderBonus = QualLeaderBonus
			}
		}
		raceLeaderBonus := 0
		if maxLapsLed > 0 && r.LapsLed != nil && *r.LapsLed == maxLapsLed {
			raceLeaderBonus = RaceLeaderBonus
		}

		scores = append(scores, &model.FantasyScore{
			RaceID:          raceID,
			DriverID:        r.DriverID,
			QualifyingPts:   qualPts,
			RacePts:         racePts,
			QualLeaderBonus: qualLeaderBonus,
			RaceLeaderBonus: raceLeaderBonus,
			TotalPts:        qualPts + racePts + qualLeaderBonus + raceLeaderBonus,
		})
	}
	return scores
}
