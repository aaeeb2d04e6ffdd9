package repository

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FantasyRepository 梦幻积分仓储
type FantasyRepository interface {
	// SeedScale 写入积分表（重复播种时刷新分值）
	SeedScale(ctx context.Context, entries []*model.PointsScale) error
	// ListUnscoredRaceIDs 找出已有成绩但尚未计分的比赛（按日期升序）
	ListUnscoredRaceIDs(ctx context.Context) ([]string, error)
	GetResultsByRace(ctx context.Context, raceID string) ([]model.RaceResult, error)
	// InsertScores 事务内写入一场比赛的全部得分，已计分的 (race, driver) 行不再改动
	InsertScores(ctx context.Context, scores []*model.FantasyScore) error
}

type fantasyRepository struct {
	db *gorm.DB
}

func NewFantasyRepository(db *gorm.DB) FantasyRepository {
	return &fantasyRepository{db: db}
}

func (r *fantasyRepository) SeedScale(ctx context.Context, entries []*model.PointsScale) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "position"}, {Name: "scale_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"points"}),
	}).Create(entries).Error; err != nil {
		return fmt.Errorf("播种积分表失败: %w", err)
	}
	return nil
}

func (r *fantasyRepository) ListUnscoredRaceIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.id
		FROM races r
		WHERE EXISTS (SELECT 1 FROM race_results rr WHERE rr.race_id = r.id)
		  AND NOT EXISTS (SELECT 1 FROM fantasy_scores fs WHERE fs.race_id = r.id)
		ORDER BY r.date, r.id`).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询未计分比赛失败: %w", err)
	}
	return ids, nil
}

func (r *fantasyRepository) GetResultsByRace(ctx context.Context, raceID string) ([]model.RaceResult, error) {
	var results []model.RaceResult
	if err := r.db.WithContext(ctx).
		Where("race_id = ?", raceID).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("查询比赛成绩失败: %w, race_id: %s", err, raceID)
	}
	return results, nil
}

func (r *fantasyRepository) InsertScores(ctx context.Context, scores []*model.FantasyScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	for i := range scores {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "race_id"}, {Name: "driver_id"}},
			DoNothing: true,
		}).Create(scores[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("写入得分失败: %w, race_id: %s, driver_id: %d", err, scores[i].RaceID, scores[i].DriverID)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}
