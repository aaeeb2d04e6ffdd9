package repository

import (
	"context"
	"fmt"
	"time"

	"RaceStatSync/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunRepository 同步运行记录仓储
type RunRepository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	// Finish 收尾一次运行：落状态、汇总计数与结束时间
	Finish(ctx context.Context, id uint64, status string, summary datatypes.JSON) error
	ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *model.SyncRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("创建运行记录失败: %w, kind: %s", err, run.Kind)
	}
	return nil
}

func (r *runRepository) Finish(ctx context.Context, id uint64, status string, summary datatypes.JSON) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&model.SyncRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"summary":     summary,
			"finished_at": &now,
		}).Error; err != nil {
		return fmt.Errorf("收尾运行记录失败: %w, id: %d", err, id)
	}
	return nil
}

func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	var runs []model.SyncRun
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return runs, nil
}
