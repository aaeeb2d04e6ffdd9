package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RecentFormRow 近期状态行：最近N场有成绩比赛的得分汇总
type RecentFormRow struct {
	FullName     string  `json:"full_name"`
	Salary       int     `json:"salary"`
	Races        int     `json:"races"`
	AvgPts       float64 `json:"avg_pts"`
	MinPts       int     `json:"min_pts"`
	MaxPts       int     `json:"max_pts"`
	PtsPerDollar float64 `json:"pts_per_dollar"`
}

// TrackHistoryRow 单赛道历史行
type TrackHistoryRow struct {
	FullName     string   `json:"full_name"`
	Salary       int      `json:"salary"`
	Starts       int      `json:"starts"`
	AvgPts       float64  `json:"avg_pts"`
	PtsPerDollar float64  `json:"pts_per_dollar"`
	BestPts      int      `json:"best_pts"`
	AvgFinish    *float64 `json:"avg_finish"` // 完赛名次可能缺失，全缺时为空
}

// SegmentValueRow 赛段性价比行：赛段四条赛道合并统计
type SegmentValueRow struct {
	FullName     string  `json:"full_name"`
	Salary       int     `json:"salary"`
	Starts       int     `json:"starts"`
	AvgPts       float64 `json:"avg_pts"`
	PtsPerDollar float64 `json:"pts_per_dollar"`
}

// TrackTypeRow 按赛道类型的得分分布行
type TrackTypeRow struct {
	FullName   string  `json:"full_name"`
	TrackType  string  `json:"track_type"`
	Starts     int     `json:"starts"`
	AvgPts     float64 `json:"avg_pts"`
	FloorPts   int     `json:"floor_pts"`
	CeilingPts int     `json:"ceiling_pts"`
}

// CandidateRow 阵容候选行（优化器的枚举顺序即此查询的返回顺序）
type CandidateRow struct {
	DriverID uint64  `json:"driver_id"`
	FullName string  `json:"full_name"`
	Salary   int     `json:"salary"`
	AvgPts   float64 `json:"avg_pts"`
}

// ValueRepository 身价价值聚合查询
type ValueRepository interface {
	RecentForm(ctx context.Context, year, segment, lastN int) ([]RecentFormRow, error)
	TrackHistory(ctx context.Context, year, segment int, trackID uint64) ([]TrackHistoryRow, error)
	SegmentValue(ctx context.Context, year, segment int, trackIDs []uint64, minStarts int) ([]SegmentValueRow, error)
	TrackTypeAverages(ctx context.Context, year, segment, minStarts int) ([]TrackTypeRow, error)
	LineupCandidates(ctx context.Context, year, segment int, trackIDs []uint64, minStarts int) ([]CandidateRow, error)
}

type valueRepository struct {
	db *gorm.DB
}

func NewValueRepository(db *gorm.DB) ValueRepository {
	return &valueRepository{db: db}
}

func (r *valueRepository) RecentForm(ctx context.Context, year, segment, lastN int) ([]RecentFormRow, error) {
	var rows []RecentFormRow
	// 只把已有成绩的比赛算进"最近N场"，避免排期未跑的场次稀释样本
	err := r.db.WithContext(ctx).Raw(`
		WITH recent_races AS (
			SELECT r.id
			FROM races r
			WHERE EXISTS (SELECT 1 FROM race_results rr WHERE rr.race_id = r.id)
			ORDER BY r.date DESC
			LIMIT ?
		)
		SELECT d.display_name AS full_name,
		       ds.salary,
		       COUNT(fs.id) AS races,
		       ROUND(AVG(fs.total_pts), 1) AS avg_pts,
		       MIN(fs.total_pts) AS min_pts,
		       MAX(fs.total_pts) AS max_pts,
		       ROUND(AVG(fs.total_pts) / ds.salary, 2) AS pts_per_dollar
		FROM driver_salaries ds
		JOIN drivers d ON d.id = ds.driver_id
		JOIN fantasy_scores fs ON fs.driver_id = ds.driver_id
		JOIN recent_races rc ON rc.id = fs.race_id
		WHERE ds.year = ? AND ds.segment = ?
		GROUP BY d.display_name, ds.salary
		ORDER BY avg_pts DESC`, lastN, year, segment).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询近期状态失败: %w, year: %d, segment: %d", err, year, segment)
	}
	return rows, nil
}

func (r *valueRepository) TrackHistory(ctx context.Context, year, segment int, trackID uint64) ([]TrackHistoryRow, error) {
	var rows []TrackHistoryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.display_name AS full_name,
		       ds.salary,
		       COUNT(fs.id) AS starts,
		       ROUND(AVG(fs.total_pts), 1) AS avg_pts,
		       ROUND(AVG(fs.total_pts) / ds.salary, 2) AS pts_per_dollar,
		       MAX(fs.total_pts) AS best_pts,
		       ROUND(AVG(rr.finish_pos), 1) AS avg_finish
		FROM driver_salaries ds
		JOIN drivers d ON d.id = ds.driver_id
		JOIN fantasy_scores fs ON fs.driver_id = ds.driver_id
		JOIN races r ON r.id = fs.race_id
		LEFT JOIN race_results rr ON rr.race_id = fs.race_id AND rr.driver_id = fs.driver_id
		WHERE ds.year = ? AND ds.segment = ? AND r.track_id = ?
		GROUP BY d.display_name, ds.salary
		ORDER BY avg_pts DESC`, year, segment, trackID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询赛道历史失败: %w, track_id: %d", err, trackID)
	}
	return rows, nil
}

func (r *valueRepository) SegmentValue(ctx context.Context, year, segment int, trackIDs []uint64, minStarts int) ([]SegmentValueRow, error) {
	var rows []SegmentValueRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.display_name AS full_name,
		       ds.salary,
		       COUNT(fs.id) AS starts,
		       ROUND(AVG(fs.total_pts), 1) AS avg_pts,
		       ROUND(AVG(fs.total_pts) / ds.salary, 2) AS pts_per_dollar
		FROM driver_salaries ds
		JOIN drivers d ON d.id = ds.driver_id
		JOIN fantasy_scores fs ON fs.driver_id = ds.driver_id
		JOIN races r ON r.id = fs.race_id
		WHERE ds.year = ? AND ds.segment = ? AND r.track_id IN ?
		GROUP BY d.display_name, ds.salary
		HAVING COUNT(fs.id) >= ?
		ORDER BY pts_per_dollar DESC
		LIMIT 20`, year, segment, trackIDs, minStarts).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询赛段性价比失败: %w, year: %d, segment: %d", err, year, segment)
	}
	return rows, nil
}

func (r *valueRepository) TrackTypeAverages(ctx context.Context, year, segment, minStarts int) ([]TrackTypeRow, error) {
	var rows []TrackTypeRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.display_name AS full_name,
		       t.track_type,
		       COUNT(fs.id) AS starts,
		       ROUND(AVG(fs.total_pts), 1) AS avg_pts,
		       MIN(fs.total_pts) AS floor_pts,
		       MAX(fs.total_pts) AS ceiling_pts
		FROM driver_salaries ds
		JOIN drivers d ON d.id = ds.driver_id
		JOIN fantasy_scores fs ON fs.driver_id = ds.driver_id
		JOIN races r ON r.id = fs.race_id
		JOIN tracks t ON t.id = r.track_id
		WHERE ds.year = ? AND ds.segment = ?
		GROUP BY d.display_name, t.track_type
		HAVING COUNT(fs.id) >= ?
		ORDER BY d.display_name, avg_pts DESC`, year, segment, minStarts).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询赛道类型分布失败: %w, year: %d, segment: %d", err, year, segment)
	}
	return rows, nil
}

func (r *valueRepository) LineupCandidates(ctx context.Context, year, segment int, trackIDs []uint64, minStarts int) ([]CandidateRow, error) {
	var rows []CandidateRow
	// 次序键加 full_name 兜底，保证同分时候选枚举顺序稳定
	err := r.db.WithContext(ctx).Raw(`
		SELECT ds.driver_id,
		       d.display_name AS full_name,
		       ds.salary,
		       ROUND(AVG(fs.total_pts), 1) AS avg_pts
		FROM driver_salaries ds
		JOIN drivers d ON d.id = ds.driver_id
		JOIN fantasy_scores fs ON fs.driver_id = ds.driver_id
		JOIN races r ON r.id = fs.race_id
		WHERE ds.year = ? AND ds.segment = ? AND r.track_id IN ?
		GROUP BY ds.driver_id, d.display_name, ds.salary
		HAVING COUNT(fs.id) >= ?
		ORDER BY avg_pts DESC, d.display_name`, year, segment, trackIDs, minStarts).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询阵容候选失败: %w, year: %d, segment: %d", err, year, segment)
	}
	return rows, nil
}
