package repository

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RaceRepository 比赛与成绩仓储
type RaceRepository interface {
	InsertIfAbsent(ctx context.Context, race *model.Race) error
	// SaveResults 事务内批量保存一场比赛的全部成绩（已存在的 (race, driver) 行静默跳过）
	SaveResults(ctx context.Context, results []*model.RaceResult) error
	// ListIDs 加载全部已入库比赛ID（同步运行开始时装入缓存，已有比赛不再拉取）
	ListIDs(ctx context.Context) (map[string]struct{}, error)
}

type raceRepository struct {
	db *gorm.DB
}

func NewRaceRepository(db *gorm.DB) RaceRepository {
	return &raceRepository{db: db}
}

func (r *raceRepository) InsertIfAbsent(ctx context.Context, race *model.Race) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(race).Error; err != nil {
		return fmt.Errorf("保存比赛失败: %w, race_id: %s", err, race.ID)
	}
	return nil
}

func (r *raceRepository) SaveResults(ctx context.Context, results []*model.RaceResult) error {
	if len(results) == 0 {
		return nil
	}

	// 开启事务：一场比赛的成绩作为一个工作单元整体提交
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	for i := range results {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "race_id"}, {Name: "driver_id"}},
			DoNothing: true,
		}).Create(results[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存成绩失败: %w, race_id: %s, driver_id: %d", err, results[i].RaceID, results[i].DriverID)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func (r *raceRepository) ListIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Race{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("加载比赛ID失败: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
