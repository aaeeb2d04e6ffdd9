package api

import (
	"net/http"
	"strconv"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/repository"
	"RaceStatSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsHandler 价值聚合与积分榜查询接口
type StatsHandler struct {
	valueService   *service.ValueService
	scoringService *service.ScoringService
	logger         *logrus.Logger
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *StatsHandler {
	valueSvc := service.NewValueService(
		repository.NewValueRepository(db),
		repository.NewSalaryRepository(db),
		repository.NewStandingRepository(db),
		cfg,
		logger,
	)
	scoringSvc := service.NewScoringService(repository.NewFantasyRepository(db), logger)
	return &StatsHandler{
		valueService:   valueSvc,
		scoringService: scoringSvc,
		logger:         logger,
	}
}

// RecentForm 近期状态榜
// GET /api/value/recent-form?year=2024&segment=1
func (h *StatsHandler) RecentForm(c *gin.Context) {
	year, segment, ok := yearSegment(c)
	if !ok {
		return
	}
	rows, err := h.valueService.RecentForm(c.Request.Context(), year, segment)
	if err != nil {
		h.logger.WithError(err).Error("RecentForm failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// TrackHistory 单赛道历史榜
// GET /api/value/track/:track_id?year=2024&segment=1
func (h *StatsHandler) TrackHistory(c *gin.Context) {
	year, segment, ok := yearSegment(c)
	if !ok {
		return
	}
	trackID, err := strconv.ParseUint(c.Param("track_id"), 10, 64)
	if err != nil || trackID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "track_id必须是数字ID"})
		return
	}
	rows, err := h.valueService.TrackHistory(c.Request.Context(), year, segment, trackID)
	if err != nil {
		h.logger.WithError(err).Error("TrackHistory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// SegmentValue 赛段性价比榜
// GET /api/value/segment?year=2024&segment=1
func (h *StatsHandler) SegmentValue(c *gin.Context) {
	year, segment, ok := yearSegment(c)
	if !ok {
		return
	}
	rows, err := h.valueService.SegmentValue(c.Request.Context(), year, segment)
	if err != nil {
		h.logger.WithError(err).Error("SegmentValue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// TrackTypes 按赛道类型的得分分布
// GET /api/value/track-types?year=2024&segment=1
func (h *StatsHandler) TrackTypes(c *gin.Context) {
	year, segment, ok := yearSegment(c)
	if !ok {
		return
	}
	rows, err := h.valueService.TrackTypeAverages(c.Request.Context(), year, segment)
	if err != nil {
		h.logger.WithError(err).Error("TrackTypes failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Champions 历年总冠军
// GET /api/standings/champions
func (h *StatsHandler) Champions(c *gin.Context) {
	rows, err := h.valueService.Champions(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Champions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// TopWins 单赛季胜场排行
// GET /api/standings/top-wins
func (h *StatsHandler) TopWins(c *gin.Context) {
	rows, err := h.valueService.TopWinSeasons(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("TopWins failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// CareerWins 生涯胜场排行
// GET /api/standings/career-wins
func (h *StatsHandler) CareerWins(c *gin.Context) {
	rows, err := h.valueService.CareerWins(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("CareerWins failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// BuildScores 对全部未计分比赛执行梦幻计分
// POST /api/scores/build
func (h *StatsHandler) BuildScores(c *gin.Context) {
	scored, err := h.scoringService.ScoreUnscoredRaces(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("BuildScores failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scored_races": scored})
}

// yearSegment 解析必填的 year/segment 查询参数
func yearSegment(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year必须是年份数字"})
		return 0, 0, false
	}
	segment, err := strconv.Atoi(c.Query("segment"))
	if err != nil || segment <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segment必须是正整数"})
		return 0, 0, false
	}
	return year, segment, true
}
