package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/infrastructure/export"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// ReportHandler serves the monthly and dashboard reports
type ReportHandler struct {
	BaseHandler
	reportService *appcashier.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *appcashier.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Monthly godoc
//
//	@Summary		Monthly cashier report
//	@Description	One entry per calendar day; days never initialized are zero-filled
//	@Tags			cashier-reports
//	@Produce		json
//	@Param			year	path		int	true	"Year"
//	@Param			month	path		int	true	"Month (1-12)"
//	@Success		200		{object}	dto.Response
//	@Router			/cashier/reports/monthly/{year}/{month} [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	var req dto.MonthRequest
	if !h.bindURI(c, &req) {
		return
	}

	report, err := h.reportService.MonthlyReport(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ExportMonthly godoc
//
//	@Summary	Download the monthly report as XLSX
//	@Tags		cashier-reports
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param		year	path	int	true	"Year"
//	@Param		month	path	int	true	"Month (1-12)"
//	@Success	200		{file}	binary
//	@Router		/cashier/reports/monthly/{year}/{month}/export [get]
func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	var req dto.MonthRequest
	if !h.bindURI(c, &req) {
		return
	}

	report, err := h.reportService.MonthlyReport(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteMonthlyReport(&buf, report); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := export.MonthlyReportFilename(req.Year, req.Month)
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, export.XLSXContentType, buf.Bytes())
}

// Dashboard returns the operational overview of one date
//
//	@Router	/cashier/reports/dashboard/{date} [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	overview, err := h.reportService.DashboardOverview(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}
