package repository

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackRepository 赛道仓储
type TrackRepository interface {
	InsertIfAbsent(ctx context.Context, track *model.Track) error
	ListIDs(ctx context.Context) (map[uint64]struct{}, error)
	ListAll(ctx context.Context) ([]model.Track, error)
}

type trackRepository struct {
	db *gorm.DB
}

func NewTrackRepository(db *gorm.DB) TrackRepository {
	return &trackRepository{db: db}
}

func (r *trackRepository) InsertIfAbsent(ctx context.Context, track *model.Track) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(track).Error; err != nil {
		return fmt.Errorf("保存赛道失败: %w, track_id: %d", err, track.ID)
	}
	return nil
}

func (r *trackRepository) ListIDs(ctx context.Context) (map[uint64]struct{}, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&model.Track{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("加载赛道ID失败: %w", err)
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *trackRepository) ListAll(ctx context.Context) ([]model.Track, error) {
	var tracks []model.Track
	if err := r.db.WithContext(ctx).Order("track_type ASC, full_name ASC").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("加载赛道列表失败: %w", err)
	}
	return tracks, nil
}
