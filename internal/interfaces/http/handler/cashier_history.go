package handler

import (
	"github.com/gin-gonic/gin"
	appcashier "github.com/hotelops/backend/internal/application/cashier"
)

// HistoryHandler exposes the audit log. It is read-only: there are no
// update or delete routes for history entries.
type HistoryHandler struct {
	BaseHandler
	historyService *appcashier.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(historyService *appcashier.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List godoc
//
//	@Summary	List history entries, newest first
//	@Tags		cashier-history
//	@Produce	json
//	@Param		shift_id	query		string	false	"Shift"
//	@Param		record_id	query		string	false	"Affected record"
//	@Param		table		query		string	false	"Affected table"
//	@Param		action		query		string	false	"created, updated, status_changed, adjustment, ..."
//	@Param		from_date	query		string	false	"YYYY-MM-DD"
//	@Param		to_date		query		string	false	"YYYY-MM-DD, inclusive"
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)
//	@Success	200			{object}	dto.Response
//	@Router		/cashier/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	var filter appcashier.HistoryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.historyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
