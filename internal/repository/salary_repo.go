package repository

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"

	"gorm.io/gorm"
)

// SalaryRepository 身价与赛段仓储
type SalaryRepository interface {
	// ReplaceSegmentData 整体替换 (year, segment) 的身价与赛道数据：
	// 先删后插，同一事务内提交，重复加载保持幂等
	ReplaceSegmentData(ctx context.Context, year, segment int,
		salaries []*model.DriverSalary, tracks []*model.SegmentTrack,
		unmatched []*model.UnmatchedSalary) error
	// GetSegmentTracks 按位次返回某赛段的四条赛道
	GetSegmentTracks(ctx context.Context, year, segment int) ([]model.SegmentTrack, error)
}

type salaryRepository struct {
	db *gorm.DB
}

func NewSalaryRepository(db *gorm.DB) SalaryRepository {
	return &salaryRepository{db: db}
}

func (r *salaryRepository) ReplaceSegmentData(ctx context.Context, year, segment int,
	salaries []*model.DriverSalary, tracks []*model.SegmentTrack,
	unmatched []*model.UnmatchedSalary) error {

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	// 1. 清掉该赛段的旧数据
	if err := tx.Where("year = ? AND segment = ?", year, segment).
		Delete(&model.DriverSalary{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("清除旧身价失败: %w, year: %d, segment: %d", err, year, segment)
	}
	if err := tx.Where("year = ? AND segment_num = ?", year, segment).
		Delete(&model.SegmentTrack{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("清除旧赛道失败: %w, year: %d, segment: %d", err, year, segment)
	}
	if err := tx.Where("year = ? AND segment = ?", year, segment).
		Delete(&model.UnmatchedSalary{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("清除旧未匹配记录失败: %w, year: %d, segment: %d", err, year, segment)
	}

	// 2. 写入新数据
	if len(salaries) > 0 {
		if err := tx.Create(salaries).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("写入身价失败: %w, year: %d, segment: %d", err, year, segment)
		}
	}
	if len(tracks) > 0 {
		if err := tx.Create(tracks).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("写入赛段赛道失败: %w, year: %d, segment: %d", err, year, segment)
		}
	}
	if len(unmatched) > 0 {
		if err := tx.Create(unmatched).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("写入未匹配记录失败: %w, year: %d, segment: %d", err, year, segment)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func (r *salaryRepository) GetSegmentTracks(ctx context.Context, year, segment int) ([]model.SegmentTrack, error) {
	var tracks []model.SegmentTrack
	if err := r.db.WithContext(ctx).
		Where("year = ? AND segment_num = ?", year, segment).
		Order("position").
		Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("查询赛段赛道失败: %w, year: %d, segment: %d", err, year, segment)
	}
	return tracks, nil
}
