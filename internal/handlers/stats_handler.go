package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spendwise/internal/models"
	"spendwise/internal/services"
)

// StatsHandler handles income/expense aggregation requests.
type StatsHandler struct {
	statsService services.StatsServicer
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService services.StatsServicer) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetWeeklyStats returns day buckets for the last 7 days
// @Summary     Weekly statistics
// @Description Income and expense totals per day over the last 7 days
// @Tags        stats
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ResultEnvelope "Stats and matching transactions"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Router      /stats/weekly [get]
func (h *StatsHandler) GetWeeklyStats(c *gin.Context) {
	h.respond(c, h.statsService.WeeklyStats)
}

// GetMonthlyStats returns month buckets for the last 12 months
// @Summary     Monthly statistics
// @Description Income and expense totals per month over the last 12 months
// @Tags        stats
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ResultEnvelope "Stats and matching transactions"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Router      /stats/monthly [get]
func (h *StatsHandler) GetMonthlyStats(c *gin.Context) {
	h.respond(c, h.statsService.MonthlyStats)
}

// GetYearlyStats returns year buckets over the user's full history
// @Summary     Yearly statistics
// @Description Income and expense totals per year from the earliest transaction
// @Tags        stats
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ResultEnvelope "Stats and matching transactions"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Router      /stats/yearly [get]
func (h *StatsHandler) GetYearlyStats(c *gin.Context) {
	h.respond(c, h.statsService.YearlyStats)
}

func (h *StatsHandler) respond(c *gin.Context, fetch func(userID string) ([]services.PeriodStat, []models.Transaction, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, transactions, err := fetch(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	respondWithSuccess(c, http.StatusOK, gin.H{
		"stats":        stats,
		"transactions": transactions,
	})
}
