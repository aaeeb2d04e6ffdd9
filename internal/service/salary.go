package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/model"
	"RaceStatSync/internal/repository"
	"RaceStatSync/internal/utils/htmltext"
	"RaceStatSync/internal/utils/httpclient"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// 身价页对无UA请求返回空壳，带浏览器UA抓取
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// TrackPick 赛段装载请求里指定的一条赛道
type TrackPick struct {
	TrackID uint64 `json:"track_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// SegmentLoadRequest 赛段装载请求
type SegmentLoadRequest struct {
	Year    int `json:"year" binding:"required"`
	Segment int `json:"segment" binding:"required"`
	// 该赛段的四条赛道，顺序即赛程顺序
	Tracks []TrackPick `json:"tracks" binding:"required"`
	// 页面HTML可直接随请求给出；为空时服务端自行抓取配置的身价页
	PageHTML string `json:"page_html"`
}

// MatchedSalary 匹配成功的身价条目
type MatchedSalary struct {
	Name     string  `json:"name"`
	DriverID uint64  `json:"driver_id"`
	FullName string  `json:"full_name"`
	Ratio    float64 `json:"ratio"`
	Salary   int     `json:"salary"`
}

// UnmatchedEntry 未达阈值的身价条目与最接近候选
type UnmatchedEntry struct {
	Name      string  `json:"name"`
	Salary    int     `json:"salary"`
	Candidate string  `json:"candidate"`
	Ratio     float64 `json:"ratio"`
}

// SegmentLoadResult 赛段装载结果
type SegmentLoadResult struct {
	Year      int              `json:"year"`
	Segment   int              `json:"segment"`
	Matched   []MatchedSalary  `json:"matched"`
	Unmatched []UnmatchedEntry `json:"unmatched"`
}

// SalaryService 赛段身价装载服务：抓页面、提取身价行、名字归一到正名车手、整段替换落库
type SalaryService struct {
	salaryRepo repository.SalaryRepository
	driverRepo repository.DriverRepository
	runRepo    repository.RunRepository
	httpClient *http.Client
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewSalaryService 创建身价装载服务
func NewSalaryService(
	salaryRepo repository.SalaryRepository,
	driverRepo repository.DriverRepository,
	runRepo repository.RunRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *SalaryService {
	return &SalaryService{
		salaryRepo: salaryRepo,
		driverRepo: driverRepo,
		runRepo:    runRepo,
		httpClient: httpclient.NewWithTimeout(cfg.Salary.Timeout, logger),
		cfg:        cfg,
		logger:     logger,
	}
}

// LoadSegment 装载一个赛段：身价与赛道整体替换，未匹配条目落库留给人工核对
func (s *SalaryService) LoadSegment(ctx context.Context, req *SegmentLoadRequest) (*SegmentLoadResult, error) {
	if len(req.Tracks) != 4 {
		return nil, fmt.Errorf("赛段必须恰好4条赛道，实际: %d", len(req.Tracks))
	}

	// 1. 取页面并提取可见文本
	page := req.PageHTML
	if page == "" {
		fetched, err := s.fetchPage(ctx, s.cfg.Salary.PageURL)
		if err != nil {
			return nil, err
		}
		page = fetched
	}
	text, err := htmltext.VisibleText(page)
	if err != nil {
		return nil, err
	}

	// 2. 提取身价行
	lines := ExtractSalaryLines(text, s.cfg.Salary.MinPrice, s.cfg.Salary.MaxPrice)
	if len(lines) == 0 {
		return nil, fmt.Errorf("页面未提取到任何身价行")
	}

	// 3. 逐行归一到正名车手
	drivers, err := s.driverRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	resolver := NewIdentityResolver(drivers, s.cfg.Salary.MatchThreshold)

	result := &SegmentLoadResult{Year: req.Year, Segment: req.Segment}
	salaries := make([]*model.DriverSalary, 0, len(lines))
	unmatchedRows := make([]*model.UnmatchedSalary, 0)
	seenDrivers := make(map[uint64]struct{}, len(lines))
	for _, line := range lines {
		best, ok := resolver.Match(line.Name)
		if !ok {
			entry := UnmatchedEntry{Name: line.Name, Salary: line.Salary}
			if best != nil {
				entry.Candidate = best.FullName
				entry.Ratio = best.Ratio
			}
			result.Unmatched = append(result.Unmatched, entry)
			ctxJSON, _ := json.Marshal(entry)
			unmatchedRows = append(unmatchedRows, &model.UnmatchedSalary{
				Name:    line.Name,
				Year:    req.Year,
				Segment: req.Segment,
				Salary:  line.Salary,
				Context: ctxJSON,
			})
			continue
		}
		// 两个外部写法命中同一车手时只取首个
		if _, dup := seenDrivers[best.DriverID]; dup {
			continue
		}
		seenDrivers[best.DriverID] = struct{}{}
		result.Matched = append(result.Matched, MatchedSalary{
			Name:     line.Name,
			DriverID: best.DriverID,
			FullName: best.FullName,
			Ratio:    best.Ratio,
			Salary:   line.Salary,
		})
		salaries = append(salaries, &model.DriverSalary{
			DriverID: best.DriverID,
			Year:     req.Year,
			Segment:  req.Segment,
			Salary:   line.Salary,
		})
	}

	// 4. 赛段赛道（位次1-4）
	tracks := make([]*model.SegmentTrack, 0, len(req.Tracks))
	for i, pick := range req.Tracks {
		tracks = append(tracks, &model.SegmentTrack{
			Year:       req.Year,
			SegmentNum: req.Segment,
			Position:   i + 1,
			TrackID:    pick.TrackID,
			TrackName:  pick.Name,
			Slug:       slugify(pick.Name),
		})
	}

	// 5. 整段替换落库
	if err := s.salaryRepo.ReplaceSegmentData(ctx, req.Year, req.Segment, salaries, tracks, unmatchedRows); err != nil {
		return nil, err
	}

	// 6. 登记装载运行
	s.recordRun(ctx, req, len(result.Matched), len(result.Unmatched))
	s.logger.Infof("赛段装载完成：year=%d segment=%d 匹配 %d 条，未匹配 %d 条",
		req.Year, req.Segment, len(result.Matched), len(result.Unmatched))
	return result, nil
}

func (s *SalaryService) fetchPage(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("身价页面地址未配置")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("构建身价页请求失败: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("抓取身价页失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("身价页返回非成功状态码: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("读取身价页失败: %w", err)
	}
	return string(body), nil
}

func (s *SalaryService) recordRun(ctx context.Context, req *SegmentLoadRequest, matched, unmatched int) {
	summary, _ := json.Marshal(map[string]int{
		"segment":   req.Segment,
		"matched":   matched,
		"unmatched": unmatched,
	})
	now := time.Now()
	run := &model.SyncRun{
		RunUUID:    uuid.NewString(),
		Kind:       model.RunKindSalaries,
		StartYear:  req.Year,
		EndYear:    req.Year,
		Status:     model.RunStatusCompleted,
		Summary:    summary,
		StartedAt:  now,
		FinishedAt: &now,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.WithError(err).Warn("登记装载运行失败")
	}
}

// slugify 赛道名转标识：小写、空格换下划线
func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
