package repository

import (
	"context"
	"fmt"

	"RaceStatSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopWinSeasonRow 单赛季胜场排行行
type TopWinSeasonRow struct {
	FullName        string `json:"full_name"`
	Year            int    `json:"year"`
	Wins            int    `json:"wins"`
	Top5            int    `json:"top5"`
	Top10           int    `json:"top10"`
	ChampionshipPts int    `json:"championship_pts"`
}

// CareerWinsRow 生涯累计胜场行
type CareerWinsRow struct {
	FullName  string `json:"full_name"`
	TotalWins int    `json:"total_wins"`
	TotalTop5 int    `json:"total_top5"`
	Seasons   int    `json:"seasons"`
}

// ChampionRow 年度总冠军行（积分榜排名第一）
type ChampionRow struct {
	Year            int    `json:"year"`
	FullName        string `json:"full_name"`
	Wins            int    `json:"wins"`
	ChampionshipPts int    `json:"championship_pts"`
}

// StandingRepository 赛季积分榜仓储
type StandingRepository interface {
	// Upsert 按 (driver_id, year) 覆盖写入，重复同步时刷新统计列
	Upsert(ctx context.Context, standing *model.SeasonStanding) error
	TopWinSeasons(ctx context.Context, limit int) ([]TopWinSeasonRow, error)
	CareerWins(ctx context.Context, limit int) ([]CareerWinsRow, error)
	Champions(ctx context.Context) ([]ChampionRow, error)
}

type standingRepository struct {
	db *gorm.DB
}

func NewStandingRepository(db *gorm.DB) StandingRepository {
	return &standingRepository{db: db}
}

func (r *standingRepository) Upsert(ctx context.Context, standing *model.SeasonStanding) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "driver_id"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rank", "wins", "top5", "top10", "poles", "starts", "dnf",
			"laps_led", "championship_pts", "bonus_pts", "penalty_pts",
		}),
	}).Create(standing).Error; err != nil {
		return fmt.Errorf("保存积分榜失败: %w, driver_id: %d, year: %d", err, standing.DriverID, standing.Year)
	}
	return nil
}

func (r *standingRepository) TopWinSeasons(ctx context.Context, limit int) ([]TopWinSeasonRow, error) {
	var rows []TopWinSeasonRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.display_name AS full_name, s.year, s.wins, s.top5, s.top10, s.championship_pts
		FROM season_standings s
		JOIN drivers d ON d.id = s.driver_id
		WHERE s.wins > 0
		ORDER BY s.wins DESC, s.year DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询单赛季胜场排行失败: %w", err)
	}
	return rows, nil
}

func (r *standingRepository) CareerWins(ctx context.Context, limit int) ([]CareerWinsRow, error) {
	var rows []CareerWinsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.display_name AS full_name,
		       SUM(s.wins)  AS total_wins,
		       SUM(s.top5)  AS total_top5,
		       COUNT(DISTINCT s.year) AS seasons
		FROM season_standings s
		JOIN drivers d ON d.id = s.driver_id
		GROUP BY d.display_name
		HAVING SUM(s.wins) > 0
		ORDER BY total_wins DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询生涯胜场排行失败: %w", err)
	}
	return rows, nil
}

func (r *standingRepository) Champions(ctx context.Context) ([]ChampionRow, error) {
	var rows []ChampionRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT s.year, d.display_name AS full_name, s.wins, s.championship_pts
		FROM season_standings s
		JOIN drivers d ON d.id = s.driver_id
		WHERE s.rank = 1
		ORDER BY s.year DESC`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询历年冠军失败: %w", err)
	}
	return rows, nil
}
