package handler

import (
	"github.com/gin-gonic/gin"
	appcashier "github.com/hotelops/backend/internal/application/cashier"
)

// DayHandler handles business-day endpoints
type DayHandler struct {
	BaseHandler
	dayService *appcashier.DayService
}

// NewDayHandler creates a new DayHandler
func NewDayHandler(dayService *appcashier.DayService) *DayHandler {
	return &DayHandler{dayService: dayService}
}

// Initialize godoc
//
//	@Summary		Initialize a business day
//	@Description	Creates the daily aggregate and one open shift per roster slot
//	@Tags			cashier-days
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string							true	"Acting user"
//	@Param			request		body		appcashier.InitializeDayRequest	true	"Day initialization"
//	@Success		201			{object}	dto.Response
//	@Failure		400			{object}	dto.Response
//	@Failure		409			{object}	dto.Response
//	@Router			/cashier/days [post]
func (h *DayHandler) Initialize(c *gin.Context) {
	var req appcashier.InitializeDayRequest
	if !h.bindJSON(c, &req) {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	req.CreatedBy = userID

	day, err := h.dayService.InitializeDay(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, day)
}

// Get godoc
//
//	@Summary	Get a business day with its shifts
//	@Tags		cashier-days
//	@Produce	json
//	@Param		date	path		string	true	"Business date (YYYY-MM-DD)"
//	@Success	200		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Router		/cashier/days/{date} [get]
func (h *DayHandler) Get(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	day, err := h.dayService.GetDay(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, day)
}

// ListShifts returns the shifts of a day in roster order
//
//	@Router	/cashier/days/{date}/shifts [get]
func (h *DayHandler) ListShifts(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	shifts, err := h.dayService.ListShifts(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shifts)
}

// CanClose godoc
//
//	@Summary		Check whether a day can be closed
//	@Description	Returns every reason that currently blocks the close
//	@Tags			cashier-days
//	@Produce		json
//	@Param			date	path		string	true	"Business date (YYYY-MM-DD)"
//	@Success		200		{object}	dto.Response
//	@Router			/cashier/days/{date}/can-close [get]
func (h *DayHandler) CanClose(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	check, err := h.dayService.CanClose(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// Close godoc
//
//	@Summary	Close a business day
//	@Tags		cashier-days
//	@Accept		json
//	@Produce	json
//	@Param		X-User-ID	header		string						true	"Acting user"
//	@Param		date		path		string						true	"Business date (YYYY-MM-DD)"
//	@Param		request		body		appcashier.CloseDayRequest	false	"Closing notes"
//	@Success	200			{object}	dto.Response
//	@Failure	422			{object}	dto.Response	"DAILY_NOT_READY with details"
//	@Failure	409			{object}	dto.Response
//	@Router		/cashier/days/{date}/close [post]
func (h *DayHandler) Close(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	var req appcashier.CloseDayRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ClosedBy, ok = h.callerID(c); !ok {
		return
	}

	day, err := h.dayService.CloseDay(c.Request.Context(), date, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, day)
}

// Reopen godoc
//
//	@Summary	Reopen a closed business day
//	@Tags		cashier-days
//	@Accept		json
//	@Produce	json
//	@Param		X-User-ID	header		string					true	"Acting user"
//	@Param		date		path		string					true	"Business date (YYYY-MM-DD)"
//	@Param		request		body		appcashier.ReopenRequest	true	"Reopen reason"
//	@Success	200			{object}	dto.Response
//	@Router		/cashier/days/{date}/reopen [post]
func (h *DayHandler) Reopen(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	var req appcashier.ReopenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy, ok = h.callerID(c); !ok {
		return
	}

	day, err := h.dayService.ReopenDay(c.Request.Context(), date, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, day)
}

// Repair recomputes the stored totals of a day from its shifts
//
//	@Router	/cashier/days/{date}/repair [post]
func (h *DayHandler) Repair(c *gin.Context) {
	date, ok := h.pathDate(c)
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	result, err := h.dayService.RepairTotals(c.Request.Context(), date, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
