package espn

import (
	"context"
	"fmt"

	"RaceStatSync/internal/adapter"
	"RaceStatSync/internal/config"
	"RaceStatSync/internal/interfaces"
	"RaceStatSync/internal/model"

	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(model.SourceESPN, NewESPNAdapter)
}

// Adapter ESPN 赛车公开API数据源
// 端点均为免费公开接口，无需鉴权
type Adapter struct {
	cfg    *config.SourceConfig
	client *Client
	logger *logrus.Logger
}

func NewESPNAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.RaceSource {
	return &Adapter{
		cfg:    cfg,
		client: NewClient(cfg, logger),
		logger: logger,
	}
}

// GetName ========== 实现RaceSource接口 ==========
func (a *Adapter) GetName() string {
	return "ESPN"
}

// FetchSeasonEventRefs 拉取一个赛季的全部比赛引用（分页聚合，失败页截断）
func (a *Adapter) FetchSeasonEventRefs(ctx context.Context, year int) ([]string, error) {
	url := fmt.Sprintf("%s/seasons/%d/types/2/events?lang=en&region=us", a.cfg.BaseURL, year)
	refs := a.client.fetchAllPages(ctx, url)
	if len(refs) == 0 {
		return nil, fmt.Errorf("赛季%d未获取到任何比赛引用", year)
	}
	return refs, nil
}

// FetchEvent 拉取比赛详情
func (a *Adapter) FetchEvent(ctx context.Context, ref string) (*model.EventPayload, error) {
	var payload model.EventPayload
	if err := a.client.getJSON(ctx, ref, &payload); err != nil {
		return nil, fmt.Errorf("拉取比赛详情失败: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("比赛详情带错误标记: code=%d", payload.Error.Code)
	}
	return &payload, nil
}

// FetchVenue 拉取赛道详情
func (a *Adapter) FetchVenue(ctx context.Context, ref string) (*model.VenuePayload, error) {
	var payload model.VenuePayload
	if err := a.client.getJSON(ctx, ref, &payload); err != nil {
		return nil, fmt.Errorf("拉取赛道详情失败: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("赛道详情带错误标记: code=%d", payload.Error.Code)
	}
	return &payload, nil
}

// FetchCompetition 拉取比赛对阵详情（含全部车手的名次、车辆与统计引用）
func (a *Adapter) FetchCompetition(ctx context.Context, ref string) (*model.CompetitionPayload, error) {
	var payload model.CompetitionPayload
	if err := a.client.getJSON(ctx, ref, &payload); err != nil {
		return nil, fmt.Errorf("拉取对阵详情失败: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("对阵详情带错误标记: code=%d", payload.Error.Code)
	}
	return &payload, nil
}

// FetchAthlete 拉取车手详情（赛季级端点）
func (a *Adapter) FetchAthlete(ctx context.Context, year int, athleteID uint64) (*model.AthletePayload, error) {
	url := fmt.Sprintf("%s/seasons/%d/athletes/%d?lang=en&region=us", a.cfg.BaseURL, year, athleteID)
	var payload model.AthletePayload
	if err := a.client.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("拉取车手详情失败: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("车手详情带错误标记: code=%d", payload.Error.Code)
	}
	return &payload, nil
}

// FetchCompetitorStats 拉取车手单场统计
func (a *Adapter) FetchCompetitorStats(ctx context.Context, ref string) (*model.StatsPayload, error) {
	var payload model.StatsPayload
	if err := a.client.getJSON(ctx, ref, &payload); err != nil {
		return nil, fmt.Errorf("拉取单场统计失败: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("单场统计带错误标记: code=%d", payload.Error.Code)
	}
	return &payload, nil
}

// FetchStandings 拉取赛季积分榜
func (a *Adapter) FetchStandings(ctx context.Context, year int) (*model.StandingsPayload, error) {
	url := fmt.Sprintf("%s/seasons/%d/types/2/standings/0?lang=en&region=us&limit=100", a.cfg.BaseURL, year)
	var payload model.StandingsPayload
	if err := a.client.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("拉取积分榜失败: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("积分榜带错误标记: code=%d", payload.Error.Code)
	}
	return &payload, nil
}
