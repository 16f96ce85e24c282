package handler

import (
	"net/http"

	"github.com/comanda/backend/internal/application/report"
	"github.com/comanda/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the sales dashboard
type ReportHandler struct {
	BaseHandler
	reports *report.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DailyReportQuery selects the day of a daily report
type DailyReportQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
}

// GetSummary godoc
// @ID           getReportSummary
// @Summary      Dashboard summary
// @Description  Revenue of today, yesterday and the last seven days with the payment split
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Summary}
// @Security     BearerAuth
// @Router       /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	h.Success(c, h.reports.Summary(h.reports.Now()))
}

// GetDaily godoc
// @ID           getDailyReport
// @Summary      Daily report
// @Description  Tabs opened and closed on one day. Defaults to today.
// @Tags         reports
// @Produce      json
// @Param        date query string false "Day as YYYY-MM-DD" example(2026-03-10)
// @Success      200 {object} dto.Response{data=report.DailyReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/daily [get]
func (h *ReportHandler) GetDaily(c *gin.Context) {
	var query DailyReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleError(c, err)
		return
	}

	day := h.reports.Now()
	if query.Date != "" {
		parsed, err := h.reports.ParseDate(query.Date)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	daily, err := h.reports.Daily(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, daily)
}

// GetClosedByDay godoc
// @ID           getClosedTabsByDay
// @Summary      Closed tabs grouped by day
// @Description  Closed tabs newest day first, each day with its revenue
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.DayGroup,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /reports/closed-by-day [get]
func (h *ReportHandler) GetClosedByDay(c *gin.Context) {
	groups := h.reports.ClosedByDay()
	h.List(c, groups, len(groups))
}
