package handlers_analytics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wasiahamad/Portfolio/internal/clmiddleware"
	"github.com/wasiahamad/Portfolio/internal/models/clanalytics"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
)

type AnalyticsHandler struct {
	service *clanalytics.AnalyticsService
}

type TrackRequest struct {
	Page string `json:"page"`
}

func NewAnalyticsHandler(service *clanalytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// Track enregistre une page vue (public)
func (ah *AnalyticsHandler) Track(c *gin.Context) {
	var req TrackRequest
	// corps optionnel, page "/" par défaut
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	address := clmiddleware.ClientAddress(c)

	if _, err := ah.service.RecordVisit(ctx, address, c.Request.UserAgent(), req.Page); err != nil {
		cllog.Ctx(ctx).Error().Err(err).Str("ip", address).Str("page", req.Page).Msg("Erreur enregistrement visite")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to track visit",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStats retourne les totaux et les 30 derniers jours
func (ah *AnalyticsHandler) GetStats(c *gin.Context) {
	stats, err := ah.service.GetStats(c.Request.Context())
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur lecture analytics")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetVisitors retourne la liste paginée des visiteurs
func (ah *AnalyticsHandler) GetVisitors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, err := ah.service.ListVisitors(c.Request.Context(), page, limit)
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur lecture visiteurs")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch visitors",
		})
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetRealtimeStats retourne les statistiques en temps réel
func (ah *AnalyticsHandler) GetRealtimeStats(c *gin.Context) {
	stats, err := ah.service.GetRealtimeStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to retrieve realtime stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
