package service

import (
	"context"
	"fmt"
	"sort"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// LineupCandidate 参与阵容枚举的候选车手
type LineupCandidate struct {
	DriverID uint64  `json:"driver_id"`
	FullName string  `json:"full_name"`
	Salary   int     `json:"salary"`
	AvgPts   float64 `json:"avg_pts"`
}

// Lineup 一套预算内阵容
type Lineup struct {
	Drivers     []LineupCandidate `json:"drivers"`
	TotalSalary int               `json:"total_salary"`
	TotalPts    float64           `json:"total_pts"`
	Leftover    int               `json:"leftover"`
}

// OptimizeOptions 阵容优化可调参数，零值回落到配置默认
type OptimizeOptions struct {
	Budget    int      `json:"budget"`
	Size      int      `json:"size"`
	TopN      int      `json:"top_n"`
	MinStarts int      `json:"min_starts"`
	TrackIDs  []uint64 `json:"track_ids"`
}

// OptimizeResult 优化结果与所用参数
type OptimizeResult struct {
	Year           int      `json:"year"`
	Segment        int      `json:"segment"`
	Budget         int      `json:"budget"`
	CandidateCount int      `json:"candidate_count"`
	Lineups        []Lineup `json:"lineups"`
}

// LineupService 预算约束阵容优化服务
type LineupService struct {
	valueRepo  repository.ValueRepository
	salaryRepo repository.SalaryRepository
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewLineupService 创建阵容优化服务
func NewLineupService(
	valueRepo repository.ValueRepository,
	salaryRepo repository.SalaryRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *LineupService {
	return &LineupService{
		valueRepo:  valueRepo,
		salaryRepo: salaryRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// OptimizeSegment 对一个赛段做穷举优化：候选来自该赛段四条赛道的历史得分
func (s *LineupService) OptimizeSegment(ctx context.Context, year, segment int, opts *OptimizeOptions) (*OptimizeResult, error) {
	if opts == nil {
		opts = &OptimizeOptions{}
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = s.cfg.Fantasy.Budget
	}
	size := opts.Size
	if size <= 0 {
		size = s.cfg.Fantasy.LineupSize
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = s.cfg.Fantasy.TopN
	}
	minStarts := opts.MinStarts
	if minStarts <= 0 {
		minStarts = s.cfg.Fantasy.MinStarts
	}

	// 1. 赛道未显式给出时从赛段配置解析
	trackIDs := opts.TrackIDs
	if len(trackIDs) == 0 {
		tracks, err := s.salaryRepo.GetSegmentTracks(ctx, year, segment)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			trackIDs = append(trackIDs, t.TrackID)
		}
	}
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("赛段赛道未配置: year: %d, segment: %d", year, segment)
	}

	// 2. 拉取候选（按平均得分降序，即枚举顺序）
	rows, err := s.valueRepo.LineupCandidates(ctx, year, segment, trackIDs, minStarts)
	if err != nil {
		return nil, err
	}
	candidates := make([]LineupCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, LineupCandidate{
			DriverID: row.DriverID,
			FullName: row.FullName,
			Salary:   row.Salary,
			AvgPts:   row.AvgPts,
		})
	}

	// 3. 穷举
	lineups := BestLineups(candidates, budget, size, topN)
	s.logger.Infof("阵容优化：%d 名候选，预算 %d，产出 %d 套阵容", len(candidates), budget, len(lineups))

	return &OptimizeResult{
		Year:           year,
		Segment:        segment,
		Budget:         budget,
		CandidateCount: len(candidates),
		Lineups:        lineups,
	}, nil
}

// BestLineups 穷举全部 C(n, size) 组合，保留总薪资不超预算的组合，
// 按总平均分降序稳定排序（同分保持枚举顺序），最多返回 topN 套。
// 候选不足或预算过紧时返回空切片，空结果是合法结局。
func BestLineups(candidates []LineupCandidate, budget, size, topN int) []Lineup {
	if size <= 0 || topN <= 0 || len(candidates) < size {
		return nil
	}

	var feasible []Lineup
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		totalSalary := 0
		totalPts := 0.0
		for _, i := range idx {
			totalSalary += candidates[i].Salary
			totalPts += candidates[i].AvgPts
		}
		if totalSalary <= budget {
			drivers := make([]LineupCandidate, size)
			for k, i := range idx {
				drivers[k] = candidates[i]
			}
			feasible = append(feasible, Lineup{
				Drivers:     drivers,
				TotalSalary: totalSalary,
				TotalPts:    totalPts,
				Leftover:    budget - totalSalary,
			})
		}

		// 组合推进：最右侧还能右移的下标加一，其后重置为紧邻递增
		pos := size - 1
		for pos >= 0 && idx[pos] == len(candidates)-size+pos {
			pos--
		}
		if pos < 0 {
			break
		}
		idx[pos]++
		for j := pos + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}

	sort.SliceStable(feasible, func(i, j int) bool {
		return feasible[i].TotalPts > feasible[j].TotalPts
	})
	if len(feasible) > topN {
		feasible = feasible[:topN]
	}
	return feasible
}
