package api

import (
	"net/http"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/repository"
	"RaceStatSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LineupHandler 阵容优化与赛段装载接口
type LineupHandler struct {
	lineupService *service.LineupService
	salaryService *service.SalaryService
	logger        *logrus.Logger
}

// NewLineupHandler 创建 LineupHandler
func NewLineupHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *LineupHandler {
	salaryRepo := repository.NewSalaryRepository(db)
	return &LineupHandler{
		lineupService: service.NewLineupService(
			repository.NewValueRepository(db),
			salaryRepo,
			cfg,
			logger,
		),
		salaryService: service.NewSalaryService(
			salaryRepo,
			repository.NewDriverRepository(db),
			repository.NewRunRepository(db),
			cfg,
			logger,
		),
		logger: logger,
	}
}

type optimizeRequest struct {
	Year    int `json:"year" binding:"required"`
	Segment int `json:"segment" binding:"required"`
	// 以下参数可选，零值回落配置默认
	Budget    int      `json:"budget"`
	Size      int      `json:"size"`
	TopN      int      `json:"top_n"`
	MinStarts int      `json:"min_starts"`
	TrackIDs  []uint64 `json:"track_ids"`
}

// Optimize 穷举预算内最优阵容
// POST /api/lineups/optimize
func (h *LineupHandler) Optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.lineupService.OptimizeSegment(c.Request.Context(), req.Year, req.Segment, &service.OptimizeOptions{
		Budget:    req.Budget,
		Size:      req.Size,
		TopN:      req.TopN,
		MinStarts: req.MinStarts,
		TrackIDs:  req.TrackIDs,
	})
	if err != nil {
		h.logger.WithError(err).Error("Optimize failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// LoadSegment 装载一个赛段的身价与赛道
// POST /api/segments/load
func (h *LineupHandler) LoadSegment(c *gin.Context) {
	var req service.SegmentLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.salaryService.LoadSegment(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("LoadSegment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
