package handler

import (
	"github.com/gin-gonic/gin"
	appcashier "github.com/hotelops/backend/internal/application/cashier"
)

// ShiftHandler handles shift endpoints
type ShiftHandler struct {
	BaseHandler
	shiftService *appcashier.ShiftService
}

// NewShiftHandler creates a new ShiftHandler
func NewShiftHandler(shiftService *appcashier.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// Get godoc
//
//	@Summary	Get a shift with its ledgers and users
//	@Tags		cashier-shifts
//	@Produce	json
//	@Param		id	path		string	true	"Shift ID"
//	@Success	200	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Router		/cashier/shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	shift, err := h.shiftService.GetShift(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// UpdateIncome godoc
//
//	@Summary		Store the income of a shift
//	@Description	The breakdown, when present, must sum exactly to income
//	@Tags			cashier-shifts
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string							true	"Acting user"
//	@Param			id			path		string							true	"Shift ID"
//	@Param			request		body		appcashier.UpdateIncomeRequest	true	"Income"
//	@Success		200			{object}	dto.Response
//	@Failure		400			{object}	dto.Response
//	@Failure		409			{object}	dto.Response	"CONCURRENT_MODIFICATION, retryable"
//	@Failure		422			{object}	dto.Response
//	@Router			/cashier/shifts/{id}/income [put]
func (h *ShiftHandler) UpdateIncome(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.UpdateIncomeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy, ok = h.callerID(c); !ok {
		return
	}

	shift, err := h.shiftService.UpdateIncome(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// SetDenominations godoc
//
//	@Summary	Replace the counted denominations of a shift
//	@Tags		cashier-shifts
//	@Accept		json
//	@Produce	json
//	@Param		X-User-ID	header		string								true	"Acting user"
//	@Param		id			path		string								true	"Shift ID"
//	@Param		request		body		appcashier.SetDenominationsRequest	true	"Denomination lines"
//	@Success	200			{object}	dto.Response
//	@Router		/cashier/shifts/{id}/denominations [put]
func (h *ShiftHandler) SetDenominations(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.SetDenominationsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy, ok = h.callerID(c); !ok {
		return
	}

	shift, err := h.shiftService.SetDenominations(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// SetPayments replaces the non-cash payment lines of a shift
//
//	@Router	/cashier/shifts/{id}/payments [put]
func (h *ShiftHandler) SetPayments(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.SetPaymentsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy, ok = h.callerID(c); !ok {
		return
	}

	shift, err := h.shiftService.SetPayments(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// AssignUsers replaces the users attributed to a shift
//
//	@Router	/cashier/shifts/{id}/users [put]
func (h *ShiftHandler) AssignUsers(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.AssignUsersRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy, ok = h.callerID(c); !ok {
		return
	}

	shift, err := h.shiftService.AssignUsers(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// UpdateNotes replaces the notes of a shift
//
//	@Router	/cashier/shifts/{id}/notes [put]
func (h *ShiftHandler) UpdateNotes(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.UpdateNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy, ok = h.callerID(c); !ok {
		return
	}

	shift, err := h.shiftService.UpdateNotes(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// Close godoc
//
//	@Summary		Close a shift
//	@Description	Notes are mandatory when the difference exceeds the block threshold
//	@Tags			cashier-shifts
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string							true	"Acting user"
//	@Param			id			path		string							true	"Shift ID"
//	@Param			request		body		appcashier.CloseShiftRequest	false	"Closing notes"
//	@Success		200			{object}	dto.Response
//	@Failure		422			{object}	dto.Response
//	@Router			/cashier/shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.CloseShiftRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ClosedBy, ok = h.callerID(c); !ok {
		return
	}

	shift, err := h.shiftService.Close(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// Reopen moves a closed shift back to in_progress
//
//	@Router	/cashier/shifts/{id}/reopen [post]
func (h *ShiftHandler) Reopen(c *gin.Context) {
	id, ok := h.pathID(c)
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

	shift, err := h.shiftService.Reopen(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}

// Audit freezes a closed shift
//
//	@Router	/cashier/shifts/{id}/audit [post]
func (h *ShiftHandler) Audit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.Audit(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}
