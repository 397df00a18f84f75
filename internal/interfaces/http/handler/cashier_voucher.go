package handler

import (
	"github.com/gin-gonic/gin"
	appcashier "github.com/hotelops/backend/internal/application/cashier"
)

// VoucherHandler handles voucher sub-ledger endpoints
type VoucherHandler struct {
	BaseHandler
	voucherService *appcashier.VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService *appcashier.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

// Create godoc
//
//	@Summary		Draw a voucher
//	@Description	A voucher drawn from a shift reduces that shift's expected cash
//	@Tags			cashier-vouchers
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string							true	"Acting user"
//	@Param			request		body		appcashier.CreateVoucherRequest	true	"Voucher"
//	@Success		201			{object}	dto.Response
//	@Failure		400			{object}	dto.Response
//	@Failure		422			{object}	dto.Response
//	@Router			/cashier/vouchers [post]
func (h *VoucherHandler) Create(c *gin.Context) {
	var req appcashier.CreateVoucherRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var ok bool
	if req.CreatedBy, ok = h.callerID(c); !ok {
		return
	}

	voucher, err := h.voucherService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// List godoc
//
//	@Summary	List vouchers
//	@Tags		cashier-vouchers
//	@Produce	json
//	@Param		status		query		string	false	"pending, justified or cancelled"
//	@Param		shift_id	query		string	false	"Originating shift"
//	@Param		from_date	query		string	false	"YYYY-MM-DD"
//	@Param		to_date		query		string	false	"YYYY-MM-DD, inclusive"
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)
//	@Success	200			{object}	dto.Response
//	@Router		/cashier/vouchers [get]
func (h *VoucherHandler) List(c *gin.Context) {
	var filter appcashier.VoucherListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.voucherService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListActive returns every pending voucher with their total
//
//	@Router	/cashier/vouchers/active [get]
func (h *VoucherHandler) ListActive(c *gin.Context) {
	active, err := h.voucherService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, active)
}

// Get returns a single voucher
//
//	@Router	/cashier/vouchers/{id} [get]
func (h *VoucherHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	voucher, err := h.voucherService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// Justify godoc
//
//	@Summary	Justify a pending voucher against a shift
//	@Tags		cashier-vouchers
//	@Accept		json
//	@Produce	json
//	@Param		X-User-ID	header		string								true	"Acting user"
//	@Param		id			path		string								true	"Voucher ID"
//	@Param		request		body		appcashier.JustifyVoucherRequest	true	"Target shift"
//	@Success	200			{object}	dto.Response
//	@Failure	422			{object}	dto.Response
//	@Router		/cashier/vouchers/{id}/justify [post]
func (h *VoucherHandler) Justify(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.JustifyVoucherRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.JustifiedBy, ok = h.callerID(c); !ok {
		return
	}

	voucher, err := h.voucherService.Justify(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// Cancel voids a pending voucher
//
//	@Router	/cashier/vouchers/{id}/cancel [post]
func (h *VoucherHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req appcashier.CancelVoucherRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.CancelledBy, ok = h.callerID(c); !ok {
		return
	}

	voucher, err := h.voucherService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}
