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

type SyncHandler struct {
	syncService *service.SyncService
	runRepo     repository.RunRepository
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewSyncHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *SyncHandler {
	runRepo := repository.NewRunRepository(db)
	return &SyncHandler{
		syncService: service.NewSyncService(
			repository.NewDriverRepository(db),
			repository.NewTrackRepository(db),
			repository.NewRaceRepository(db),
			repository.NewStandingRepository(db),
			runRepo,
			cfg,
			logger,
		),
		runRepo: runRepo,
		cfg:     cfg,
		logger:  logger,
	}
}

// SyncSeasonsHandler 同步指定数据源的比赛与成绩
// @Summary 同步赛季比赛数据
// @Param source path string true "数据源名称（espn）"
// @Param start query int false "起始赛季（默认取配置）"
// @Param end query int false "结束赛季（默认取配置）"
// @Success 200 {object} model.SyncRun
// @Failure 500 {object} map[string]string
// @Router /sync/seasons/{source} [post]
func (h *SyncHandler) SyncSeasonsHandler(c *gin.Context) {
	source := c.Param("source")
	start, end, ok := h.yearRange(c)
	if !ok {
		return
	}

	run, err := h.syncService.SyncSeasons(c.Request.Context(), source, start, end)
	if err != nil {
		h.logger.Errorf("同步%s比赛失败: %v", source, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

// SyncStandingsHandler 同步指定数据源的赛季积分榜
// @Summary 同步赛季积分榜
// @Param source path string true "数据源名称（espn）"
// @Param start query int false "起始赛季（默认取配置）"
// @Param end query int false "结束赛季（默认取配置）"
// @Success 200 {object} model.SyncRun
// @Failure 500 {object} map[string]string
// @Router /sync/standings/{source} [post]
func (h *SyncHandler) SyncStandingsHandler(c *gin.Context) {
	source := c.Param("source")
	start, end, ok := h.yearRange(c)
	if !ok {
		return
	}

	run, err := h.syncService.SyncStandings(c.Request.Context(), source, start, end)
	if err != nil {
		h.logger.Errorf("同步%s积分榜失败: %v", source, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListRunsHandler 最近的同步/装载运行记录
// GET /api/sync/runs?limit=20
func (h *SyncHandler) ListRunsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	runs, err := h.runRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// yearRange 解析 start/end 查询参数，缺省回落到配置的同步区间
func (h *SyncHandler) yearRange(c *gin.Context) (int, int, bool) {
	start, err := strconv.Atoi(c.DefaultQuery("start", strconv.Itoa(h.cfg.Sync.StartYear)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start必须是年份数字"})
		return 0, 0, false
	}
	end, err := strconv.Atoi(c.DefaultQuery("end", strconv.Itoa(h.cfg.Sync.EndYear)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end必须是年份数字"})
		return 0, 0, false
	}
	if start > end {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start不能大于end"})
		return 0, 0, false
	}
	return start, end, true
}
