package repository

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DriverRepository 车手仓储
type DriverRepository interface {
	// InsertIfAbsent 不存在则插入（重复ID静默幂等）
	InsertIfAbsent(ctx context.Context, driver *model.Driver) error
	// ListIDs 加载全部已知车手ID（同步运行开始时装入缓存）
	ListIDs(ctx context.Context) (map[uint64]struct{}, error)
	// ListAll 加载全部车手（身份匹配用）
	ListAll(ctx context.Context) ([]model.Driver, error)
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) InsertIfAbsent(ctx context.Context, driver *model.Driver) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(driver).Error; err != nil {
		return fmt.Errorf("保存车手失败: %w, driver_id: %d", err, driver.ID)
	}
	return nil
}

func (r *driverRepository) ListIDs(ctx context.Context) (map[uint64]struct{}, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&model.Driver{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("加载车手ID失败: %w", err)
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *driverRepository) ListAll(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("加载车手列表失败: %w", err)
	}
	return drivers, nil
}
