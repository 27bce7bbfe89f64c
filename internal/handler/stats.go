package handler

import (
	"net/http"
	"strconv"

	"github.com/hummafaranpilot-stack/metatrim/internal/apierror"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Aggregated dashboard figures
// @Description  Order, refund, chargeback and recurring revenue totals, plus a net summary. Both date bounds must be given together; without them the whole history is aggregated.
// @Tags         stats
// @Produce      json
// @Param        startDate query string false "From date (YYYY-MM-DD)"
// @Param        endDate   query string false "To date (YYYY-MM-DD), inclusive"
// @Success      200 {object} dto.DashboardStatsResponse
// @Failure      400 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	filter := dto.StatsFilter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("could not compute dashboard stats"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RevenueByDay godoc
// @Summary      Daily revenue series
// @Tags         stats
// @Produce      json
// @Param        days query int false "Window size in days" default(30)
// @Success      200 {array} dto.RevenueByDay
// @Security     BearerAuth
// @Router       /v1/stats/revenue-by-day [get]
func (h *StatsHandler) RevenueByDay(c *gin.Context) {
	days := queryInt(c, "days", 30)
	resp, err := h.svc.RevenueByDay(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not compute revenue series"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProducts godoc
// @Summary      Best selling products by revenue
// @Tags         stats
// @Produce      json
// @Param        limit query int false "Max rows" default(10)
// @Success      200 {array} dto.TopProduct
// @Security     BearerAuth
// @Router       /v1/stats/top-products [get]
func (h *StatsHandler) TopProducts(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	resp, err := h.svc.TopProducts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not compute top products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecentActivity godoc
// @Summary      Latest orders, refunds and chargebacks interleaved
// @Tags         stats
// @Produce      json
// @Param        limit query int false "Max rows" default(20)
// @Success      200 {array} dto.ActivityItem
// @Security     BearerAuth
// @Router       /v1/stats/recent-activity [get]
func (h *StatsHandler) RecentActivity(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	resp, err := h.svc.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not fetch recent activity"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
