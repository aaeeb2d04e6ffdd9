package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"RaceStatSync/internal/adapter"
	"RaceStatSync/internal/adapter/espn"
	"RaceStatSync/internal/config"
	"RaceStatSync/internal/interfaces"
	"RaceStatSync/internal/model"
	"RaceStatSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// 比赛日期两种ISO写法：带秒的RFC3339 和 ESPN常见的到分钟截断
var eventDateLayouts = []string{time.RFC3339, "2006-01-02T15:04Z07:00"}

// syncState 一次同步运行的实例态：库内已知ID缓存 + 计数器。
// 缓存归属运行实例而非全局，两次运行互不串台；落库一律不存在才插入，
// 并发运行撞键时也只是多一次无效fetch，不会写坏数据。
type syncState struct {
	source interfaces.RaceSource

	knownRaces   map[string]struct{}
	knownTracks  map[uint64]struct{}
	knownDrivers map[uint64]struct{}

	racesAdded   int
	resultsAdded int
	tracksAdded  int
	driversAdded int
	standings    int
	skipped      int
}

func (st *syncState) summary() datatypes.JSON {
	b, _ := json.Marshal(map[string]int{
		"races_added":   st.racesAdded,
		"results_added": st.resultsAdded,
		"tracks_added":  st.tracksAdded,
		"drivers_added": st.driversAdded,
		"standings":     st.standings,
		"skipped":       st.skipped,
	})
	return b
}

// SyncService 赛事数据同步服务：沿远端引用图（赛季→比赛→场地/对阵→车手/统计）
// 逐层抓取，归一化落库。远端单项失败只跳过对应工作单元，绝不中断整次运行。
type SyncService struct {
	driverRepo   repository.DriverRepository
	trackRepo    repository.TrackRepository
	raceRepo     repository.RaceRepository
	standingRepo repository.StandingRepository
	runRepo      repository.RunRepository
	cfg          *config.Config
	logger       *logrus.Logger
}

// NewSyncService 创建同步服务
func NewSyncService(
	driverRepo repository.DriverRepository,
	trackRepo repository.TrackRepository,
	raceRepo repository.RaceRepository,
	standingRepo repository.StandingRepository,
	runRepo repository.RunRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		driverRepo:   driverRepo,
		trackRepo:    trackRepo,
		raceRepo:     raceRepo,
		standingRepo: standingRepo,
		runRepo:      runRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// buildSource 从注册表构建数据源适配器
func (s *SyncService) buildSource(source string) (interfaces.RaceSource, error) {
	factory, ok := adapter.GetFactory(model.SourceType(source))
	if !ok {
		return nil, fmt.Errorf("未支持的数据源: %s", source)
	}
	srcCfg, ok := s.cfg.Sources[source]
	if !ok {
		return nil, fmt.Errorf("未获取到数据源配置: %s", source)
	}
	return factory(&srcCfg, s.logger), nil
}

// SyncSeasons 同步一段年份区间的全部比赛与成绩。
// 已入库的比赛直接跳过（不发任何请求），增量补齐新场次，可反复调用。
func (s *SyncService) SyncSeasons(ctx context.Context, source string, startYear, endYear int) (*model.SyncRun, error) {
	src, err := s.buildSource(source)
	if err != nil {
		return nil, err
	}

	// 1. 登记运行
	run := &model.SyncRun{
		RunUUID:   uuid.NewString(),
		Kind:      model.RunKindRaces,
		StartYear: startYear,
		EndYear:   endYear,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	// 2. 装载已知ID缓存
	st, err := s.newSyncState(ctx, src)
	if err != nil {
		s.finishRun(ctx, run, model.RunStatusFailed, nil)
		return nil, err
	}

	// 3. 逐年走引用图
	okYears := 0
	for year := startYear; year <= endYear; year++ {
		refs, err := src.FetchSeasonEventRefs(ctx, year)
		if err != nil {
			s.logger.WithError(err).WithField("year", year).Warn("拉取赛季比赛引用失败，跳过该赛季")
			continue
		}
		okYears++
		s.logger.Infof("赛季 %d：共 %d 场比赛引用", year, len(refs))

		for i, ref := range refs {
			// 引用URL里带事件ID，已入库的比赛连详情都不必拉
			if eventID := espn.RefID(ref, "events"); eventID != 0 {
				if _, known := st.knownRaces[strconv.FormatUint(eventID, 10)]; known {
					continue
				}
			}
			if err := s.syncRace(ctx, st, year, i+1, ref); err != nil {
				s.logger.WithError(err).WithField("ref", ref).Warn("同步比赛失败，跳过该场")
				st.skipped++
			}
		}
	}

	// 4. 收尾：全部赛季引用都拉不下来才算运行失败
	status := model.RunStatusCompleted
	if okYears == 0 {
		status = model.RunStatusFailed
	}
	s.finishRun(ctx, run, status, st)
	s.logger.Infof("比赛同步完成：新增 %d 场比赛、%d 条成绩、%d 名车手、%d 条赛道，跳过 %d 个单元",
		st.racesAdded, st.resultsAdded, st.driversAdded, st.tracksAdded, st.skipped)
	return run, nil
}

// SyncStandings 同步一段年份区间的赛季积分榜（按 driver+year 覆盖写入）
func (s *SyncService) SyncStandings(ctx context.Context, source string, startYear, endYear int) (*model.SyncRun, error) {
	src, err := s.buildSource(source)
	if err != nil {
		return nil, err
	}

	run := &model.SyncRun{
		RunUUID:   uuid.NewString(),
		Kind:      model.RunKindStandings,
		StartYear: startYear,
		EndYear:   endYear,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	st, err := s.newSyncState(ctx, src)
	if err != nil {
		s.finishRun(ctx, run, model.RunStatusFailed, nil)
		return nil, err
	}

	okYears := 0
	for year := startYear; year <= endYear; year++ {
		payload, err := src.FetchStandings(ctx, year)
		if err != nil {
			s.logger.WithError(err).WithField("year", year).Warn("拉取积分榜失败，跳过该赛季")
			continue
		}
		okYears++

		for _, entry := range payload.Standings {
			if len(entry.Records) == 0 {
				continue
			}
			rec := entry.Records[0]
			athleteID := espn.RefID(rec.Ref, "athletes")
			if athleteID == 0 {
				st.skipped++
				continue
			}
			s.ensureDriver(ctx, st, year, athleteID)

			// 统计项缺失一律按0处理，榜单行不会因为缺字段报错
			standing := &model.SeasonStanding{
				DriverID:        athleteID,
				Year:            year,
				Rank:            model.FindStatOrZero(rec.Stats, model.StatRank),
				Wins:            model.FindStatOrZero(rec.Stats, model.StatWins),
				Top5:            model.FindStatOrZero(rec.Stats, model.StatTop5),
				Top10:           model.FindStatOrZero(rec.Stats, model.StatTop10),
				Poles:           model.FindStatOrZero(rec.Stats, model.StatPoles),
				Starts:          model.FindStatOrZero(rec.Stats, model.StatStarts),
				DNF:             model.FindStatOrZero(rec.Stats, model.StatDNF),
				LapsLed:         model.FindStatOrZero(rec.Stats, model.StatLapsLead),
				ChampionshipPts: model.FindStatOrZero(rec.Stats, model.StatChampionshipPts),
				BonusPts:        model.FindStatOrZero(rec.Stats, model.StatBonus),
				PenaltyPts:      model.FindStatOrZero(rec.Stats, model.StatPenaltyPts),
			}
			if err := s.standingRepo.Upsert(ctx, standing); err != nil {
				s.logger.WithError(err).WithField("driver_id", athleteID).Warn("写入积分榜失败，跳过该条")
				st.skipped++
				continue
			}
			st.standings++
		}
	}

	status := model.RunStatusCompleted
	if okYears == 0 {
		status = model.RunStatusFailed
	}
	s.finishRun(ctx, run, status, st)
	s.logger.Infof("积分榜同步完成：写入 %d 条，新增车手 %d 名，跳过 %d 条", st.standings, st.driversAdded, st.skipped)
	return run, nil
}

// newSyncState 创建运行实例态并从库里装载三类已知ID
func (s *SyncService) newSyncState(ctx context.Context, src interfaces.RaceSource) (*syncState, error) {
	races, err := s.raceRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	tracks, err := s.trackRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := s.driverRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	return &syncState{
		source:       src,
		knownRaces:   races,
		knownTracks:  tracks,
		knownDrivers: drivers,
	}, nil
}

// syncRace 同步单场比赛：详情→场地→比赛行→对阵→逐车手成绩。
// 没有对阵的比赛（未开跑/取消）整场跳过，连比赛行都不落。
func (s *SyncService) syncRace(ctx context.Context, st *syncState, year, raceNum int, ref string) error {
	// 1. 比赛详情
	event, err := st.source.FetchEvent(ctx, ref)
	if err != nil {
		return err
	}
	if _, known := st.knownRaces[event.ID]; known {
		return nil
	}
	if len(event.Competitions) == 0 {
		s.logger.WithField("event_id", event.ID).Info("比赛无对阵信息，整场跳过")
		st.skipped++
		return nil
	}

	// 2. 场地（失败不阻断，track_id 留空）
	trackID := s.resolveTrack(ctx, st, event)

	// 3. 比赛行
	race := &model.Race{
		ID:         event.ID,
		SeasonYear: year,
		Name:       event.Name,
		Date:       parseEventDate(event.Date),
		TrackID:    trackID,
		RaceNum:    raceNum,
	}
	if err := s.raceRepo.InsertIfAbsent(ctx, race); err != nil {
		return err
	}
	st.knownRaces[event.ID] = struct{}{}
	st.racesAdded++

	// 4. 对阵详情（失败则比赛行保留、成绩缺失，下次运行不再补）
	comp, err := st.source.FetchCompetition(ctx, event.Competitions[0].Ref)
	if err != nil {
		s.logger.WithError(err).WithField("event_id", event.ID).Warn("拉取对阵失败，本场无成绩入库")
		st.skipped++
		return nil
	}

	// 5. 逐车手构建成绩行
	results := make([]*model.RaceResult, 0, len(comp.Competitors))
	for i := range comp.Competitors {
		c := &comp.Competitors[i]
		driverID, err := strconv.ParseUint(c.ID, 10, 64)
		if err != nil || driverID == 0 {
			st.skipped++
			continue
		}
		s.ensureDriver(ctx, st, year, driverID)

		// 单场统计是独立子资源；拉取失败成绩行照录，统计列全空
		var stats *model.StatsPayload
		if c.Statistics.Ref != "" {
			if sp, err := st.source.FetchCompetitorStats(ctx, c.Statistics.Ref); err != nil {
				s.logger.WithError(err).WithField("driver_id", driverID).Warn("拉取单场统计失败，统计列留空")
			} else {
				stats = sp
			}
		}

		result := &model.RaceResult{
			RaceID:       event.ID,
			DriverID:     driverID,
			FinishPos:    c.Order,
			StartPos:     c.StartOrder,
			CarNumber:    c.Vehicle.Number,
			Manufacturer: c.Vehicle.Manufacturer,
			Team:         c.Vehicle.Team,
		}
		if stats != nil {
			result.LapsCompleted = stats.FindStat(model.StatLapsCompleted)
			result.LapsLed = stats.FindStat(model.StatLapsLead)
			result.ChampionshipPts = stats.FindStat(model.StatChampionshipPts)
			result.BonusPts = stats.FindStat(model.StatBonus)
			result.PenaltyPts = stats.FindStat(model.StatPenaltyPts)
		}
		results = append(results, result)
	}

	// 6. 整场成绩一个事务落库
	if err := s.raceRepo.SaveResults(ctx, results); err != nil {
		return err
	}
	st.resultsAdded += len(results)
	return nil
}

// resolveTrack 解析比赛场地：缓存命中直接用；未知场地拉详情并入库。
// 任何一步失败都返回空，比赛行照常落库
func (s *SyncService) resolveTrack(ctx context.Context, st *syncState, event *model.EventPayload) *uint64 {
	if len(event.Venues) == 0 {
		return nil
	}
	venueRef := event.Venues[0].Ref
	venueID := espn.RefID(venueRef, "venues")
	if venueID == 0 {
		return nil
	}
	if _, known := st.knownTracks[venueID]; known {
		return &venueID
	}

	venue, err := st.source.FetchVenue(ctx, venueRef)
	if err != nil {
		s.logger.WithError(err).WithField("venue_id", venueID).Warn("拉取场地失败，本场不关联赛道")
		return nil
	}
	track := &model.Track{
		ID:        venueID,
		FullName:  venue.FullName,
		City:      venue.Address.City,
		State:     venue.Address.State,
		Length:    venue.Length,
		TrackType: venue.Shape,
	}
	if err := s.trackRepo.InsertIfAbsent(ctx, track); err != nil {
		s.logger.WithError(err).WithField("venue_id", venueID).Warn("保存赛道失败，本场不关联赛道")
		return nil
	}
	st.knownTracks[venueID] = struct{}{}
	st.tracksAdded++
	return &venueID
}

// ensureDriver 确保车手已入库：缓存命中直接返回；否则拉车手详情插入。
// 拉取失败只告警不入缓存（下一场还会再试），成绩行仍按已知ID照录
func (s *SyncService) ensureDriver(ctx context.Context, st *syncState, year int, driverID uint64) {
	if _, known := st.knownDrivers[driverID]; known {
		return
	}
	athlete, err := st.source.FetchAthlete(ctx, year, driverID)
	if err != nil {
		s.logger.WithError(err).WithField("driver_id", driverID).Warn("拉取车手详情失败")
		return
	}
	driver := &model.Driver{
		ID:          driverID,
		FirstName:   athlete.FirstName,
		LastName:    athlete.LastName,
		DisplayName: athlete.DisplayName,
	}
	if err := s.driverRepo.InsertIfAbsent(ctx, driver); err != nil {
		s.logger.WithError(err).WithField("driver_id", driverID).Warn("保存车手失败")
		return
	}
	st.knownDrivers[driverID] = struct{}{}
	st.driversAdded++
}

// finishRun 落运行终态；失败只告警，不影响同步结果返回
func (s *SyncService) finishRun(ctx context.Context, run *model.SyncRun, status string, st *syncState) {
	var summary datatypes.JSON
	if st != nil {
		summary = st.summary()
	}
	if err := s.runRepo.Finish(ctx, run.ID, status, summary); err != nil {
		s.logger.WithError(err).WithField("run_uuid", run.RunUUID).Warn("落运行记录失败")
	}
	now := time.Now()
	run.Status = status
	run.Summary = summary
	run.FinishedAt = &now
}

// parseEventDate 解析比赛日期，两种布局都失败返回零值（不阻断入库）
func parseEventDate(raw string) time.Time {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
